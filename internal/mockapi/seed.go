package mockapi

import "fmt"

// Demo accounts seeded by cmd/mockapi.
const (
	DemoUser         = "ttbhelp@benutech.com"
	DemoEnrolledUser = "enrolled@example.com"
	DemoNoMFAUser    = "nomfa@example.com"
	DemoPassword     = "TTBHelp123"
	DemoPhone        = "5551234567"
)

// Seed adds the demo accounts: one that must register a phone, one already enrolled and one
// without MFA.
func Seed(repo UserRepo, appName string) error {
	accounts := []struct {
		username    string
		name        string
		phone       string
		mfaDisabled bool
	}{
		{DemoUser, "TTB Help", "", false},
		{DemoEnrolledUser, "Enrolled User", DemoPhone, false},
		{DemoNoMFAUser, "No MFA User", "", true},
	}

	for _, a := range accounts {
		user, err := NewUser(appName, a.username, a.name, DemoPassword)
		if err != nil {
			return fmt.Errorf("[Seed] %s: %w", a.username, err)
		}
		user.Phone = a.phone
		user.MFADisabled = a.mfaDisabled
		user.Office = map[string]any{"office_name": "Benutech Demo Office", "city": "Irvine", "state": "CA"}
		if err := repo.Upsert(user); err != nil {
			return fmt.Errorf("[Seed] %s: %w", a.username, err)
		}
	}
	return nil
}
