package store

import "context"

// Keys under which session data is persisted. The values match the keys the browser portal
// writes to local storage so that exported sessions stay readable by both.
const (
	KeyToken        = "authToken"
	KeyResponseData = "responseData"
	KeyUser         = "TbUser"
	KeyAddresses    = "TbAddress"
	KeyEmails       = "TbEmail"
	KeyOffice       = "TbOffice"
	KeyAssociation  = "TbAssociation"
	KeyLicense      = "TbLicense"
	KeyPhones       = "TbPhone"
	KeyLegacyUser   = "user" // backward compatibility mirror of KeyUser
)

// Store is durable key/value storage surviving process restarts.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// AllKeys returns every key a session may write.
func AllKeys() []string {
	return []string{
		KeyToken,
		KeyResponseData,
		KeyUser,
		KeyAddresses,
		KeyEmails,
		KeyOffice,
		KeyAssociation,
		KeyLicense,
		KeyPhones,
		KeyLegacyUser,
	}
}
