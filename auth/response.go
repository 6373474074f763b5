package auth

import (
	"encoding/json"
	"strconv"
)

const (
	statusOK          = "OK"
	statusError       = "ERROR"
	statusMFARequired = "MFA_required"

	fieldToken      = "TTBSID"
	fieldAltToken   = "stk"
	fieldStatus     = "status"
	fieldData       = "data"
	fieldResponse   = "response"
	fieldMessage    = "message"
	fieldEnrolled   = "MFA_enrolled"
	fieldPhone      = "phone"
	fieldEmail      = "email"
	fieldSuccess    = "success"
	fieldError      = "error"
	fieldErrors     = "errors"
	userPayloadSlot = 0
)

// LoginParse is the side-effect free interpretation of a login response.
type LoginParse struct {
	Kind        OutcomeKind
	Token       string
	Data        map[string]any // effective data object
	UserPayload map[string]any // data[0], nil when absent
	MFA         MFAChallenge

	// ExplicitError reports that the envelope signalled failure. It is informational only: the
	// presence of a token decides the outcome.
	ExplicitError bool
}

// ParseLoginResponse interprets the variable login envelope. The effective data object is the
// first non-empty object among response.data, data and the top level.
func ParseLoginResponse(resp map[string]any, identifier string) LoginParse {
	data := effectiveData(resp)
	p := LoginParse{
		Data:          data,
		Token:         firstString(data[fieldToken], data[fieldAltToken], resp[fieldToken]),
		ExplicitError: explicitError(resp, data),
	}
	if user, ok := indexed(data, userPayloadSlot).(map[string]any); ok {
		p.UserPayload = user
	}

	requiresMFA := stringField(data, fieldStatus) == statusMFARequired
	switch {
	case p.Token == "":
		p.Kind = OutcomeFailure
	case requiresMFA:
		p.Kind = OutcomeMFARequired
		p.MFA = MFAChallenge{
			Enrolled: mfaEnrolled(data[fieldEnrolled]),
			Phone:    scalarString(data[fieldPhone]),
			Email:    scalarString(data[fieldEmail]),
		}
		if p.MFA.Email == "" {
			p.MFA.Email = identifier
		}
	default:
		p.Kind = OutcomeSuccess
	}
	return p
}

func effectiveData(resp map[string]any) map[string]any {
	if wrapped, ok := resp[fieldResponse].(map[string]any); ok {
		if data := nonEmptyObject(wrapped[fieldData]); data != nil {
			return data
		}
	}
	if data := nonEmptyObject(resp[fieldData]); data != nil {
		return data
	}
	if resp == nil {
		return map[string]any{}
	}
	return resp
}

// envelope unwraps the optional {"response": {...}} wrapper used by the MFA endpoints.
func envelope(resp map[string]any) map[string]any {
	if wrapped, ok := resp[fieldResponse].(map[string]any); ok {
		return wrapped
	}
	return resp
}

func explicitError(resp, data map[string]any) bool {
	if b, ok := resp[fieldSuccess].(bool); ok && !b {
		return true
	}
	return stringField(resp, fieldStatus) == statusError ||
		stringField(data, fieldStatus) == statusError ||
		truthy(resp[fieldError]) ||
		truthy(resp[fieldErrors])
}

// mfaEnrolled accepts true, "true" and 1.
func mfaEnrolled(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 1
	case float64:
		return t == 1
	}
	return false
}

// failureMessage picks the first usable message out of a failed MFA envelope: data[0],
// data.message, then message.
func failureMessage(env map[string]any, fallback string) string {
	data := env[fieldData]
	for _, candidate := range []any{indexed(data, 0), field(data, fieldMessage), env[fieldMessage]} {
		if !truthy(candidate) {
			continue
		}
		switch c := candidate.(type) {
		case string:
			return c
		case map[string]any:
			if msg := stringField(c, fieldMessage); msg != "" {
				return msg
			}
		}
		return fallback
	}
	return fallback
}

func newMFAResponse(env map[string]any) *MFAResponse {
	return &MFAResponse{
		Status:  stringField(env, fieldStatus),
		Message: stringField(env, fieldMessage),
		Data:    env[fieldData],
		Raw:     env,
	}
}

func nonEmptyObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && len(m) > 0 {
		return m
	}
	return nil
}

// indexed reads slot i of an array, or key "i" of an array-like object.
func indexed(v any, i int) any {
	switch t := v.(type) {
	case []any:
		if i >= 0 && i < len(t) {
			return t[i]
		}
	case map[string]any:
		return t[strconv.Itoa(i)]
	}
	return nil
}

func field(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}

func stringField(v any, key string) string {
	s, _ := field(v, key).(string)
	return s
}

// scalarString renders strings and numbers; anything else is empty.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// firstString returns the first candidate that renders to a non-empty string.
func firstString(candidates ...any) string {
	for _, c := range candidates {
		if s := scalarString(c); s != "" {
			return s
		}
	}
	return ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	}
	return true
}
