package portal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/ttb-portal/auth"
	"github.com/jrsteele09/ttb-portal/internal/utils"
)

const (
	defaultGreeting = "User"
	notAvailable    = "N/A"
)

// storedDateLayouts are tried in order when formatting profile dates.
var storedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const displayDateLayout = "Jan 2, 2006 3:04 PM"

type Field struct {
	Label string
	Value string
}

type Section struct {
	Title  string
	Fields []Field
}

// Dashboard is what an authenticated user sees.
type Dashboard struct {
	Greeting string
	Picture  string
	Status   string
	Phones   []string
	Emails   []string
	Sections []Section

	Token    auth.TokenInfo
	HasToken bool // Token was decoded from a JWT
}

func NewDashboard(st auth.State) Dashboard {
	user := st.Profile.User
	d := Dashboard{
		Greeting: firstNonEmpty(auth.UserName(user), defaultGreeting),
		Picture:  text(field(user, "user_pic")),
		Status:   StatusText(field(user, "status")),
	}

	for _, p := range st.Profile.Phones {
		if phone := firstNonEmpty(text(field(p, "phone")), text(field(p, "number")), text(p)); phone != "" {
			d.Phones = append(d.Phones, utils.FormatPhone(phone))
		}
	}
	for _, e := range st.Profile.Emails {
		if email := firstNonEmpty(text(field(e, "email")), text(e)); email != "" {
			d.Emails = append(d.Emails, email)
		}
	}

	d.Sections = append(d.Sections, Section{
		Title: "Profile",
		Fields: []Field{
			{Label: "Name", Value: firstNonEmpty(text(field(user, "name")), notAvailable)},
			{Label: "Username", Value: firstNonEmpty(text(field(user, "username")), notAvailable)},
			{Label: "Email", Value: firstNonEmpty(text(field(user, "email")), notAvailable)},
			{Label: "Status", Value: d.Status},
			{Label: "Created", Value: FormatDate(text(field(user, "created")))},
			{Label: "Last Modified", Value: FormatDate(text(field(user, "modified")))},
		},
	})
	for _, s := range []struct {
		title string
		value any
	}{
		{"Office", st.Profile.Office},
		{"Association", st.Profile.Association},
		{"License", st.Profile.License},
	} {
		if section, ok := objectSection(s.title, s.value); ok {
			d.Sections = append(d.Sections, section)
		}
	}

	d.Token, d.HasToken = auth.InspectToken(st.Token)
	return d
}

// StatusText renders TbUser.status.
func StatusText(status any) string {
	switch s := text(status); s {
	case "1":
		return "Active"
	case "0":
		return "Inactive"
	case "":
		return "Unknown"
	default:
		return s
	}
}

// FormatDate renders a stored date for display. Empty values become "N/A" and unknown formats are
// returned unchanged.
func FormatDate(value string) string {
	if value == "" {
		return notAvailable
	}
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return value
}

// objectSection lists the scalar fields of an object in key order.
func objectSection(title string, v any) (Section, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return Section{}, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	section := Section{Title: title}
	for _, k := range keys {
		if value := text(obj[k]); value != "" {
			section.Fields = append(section.Fields, Field{Label: label(k), Value: value})
		}
	}
	return section, len(section.Fields) > 0
}

// label turns a snake_case key into a title.
func label(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func field(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// text renders scalars. Objects and arrays render as "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool, float64, int, int64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
