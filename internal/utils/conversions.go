package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a 10 digit number as (xxx) xxx-xxxx. Anything else is returned unchanged.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}
	cleaned := DigitsOnly(phone)
	if len(cleaned) == 10 {
		return fmt.Sprintf("(%s) %s-%s", cleaned[0:3], cleaned[3:6], cleaned[6:])
	}
	return phone
}

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}
