package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// User is an account of the development API.
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string
	Phone        string // registered MFA phone, empty until the user enrols
	OTPSecret    string
	Status       string
	MFADisabled  bool
	Created      time.Time
	Modified     time.Time
	Office       map[string]any
}

// NewUser creates a user with a hashed password and a fresh TOTP secret.
func NewUser(appName, username, name, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[NewUser] hash password: %w", err)
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: appName, AccountName: username})
	if err != nil {
		return nil, fmt.Errorf("[NewUser] generate otp secret: %w", err)
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username,
		Name:         name,
		PasswordHash: hash,
		OTPSecret:    key.Secret(),
		Status:       "1",
		Created:      now,
		Modified:     now,
	}, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) Enrolled() bool {
	return u.Phone != ""
}

// Payload renders the profile objects the API returns with an authenticated session.
func (u *User) Payload() map[string]any {
	payload := map[string]any{
		"TbUser": map[string]any{
			"id":       u.ID,
			"username": u.Username,
			"name":     u.Name,
			"email":    u.Email,
			"status":   u.Status,
			"created":  u.Created.Format(time.DateTime),
			"modified": u.Modified.Format(time.DateTime),
		},
		"TbEmail": []any{map[string]any{"email": u.Email, "primary": true}},
		"TbPhone": []any{},
	}
	if u.Phone != "" {
		payload["TbPhone"] = []any{map[string]any{"phone": u.Phone, "type": "mobile"}}
	}
	if len(u.Office) > 0 {
		payload["TbOffice"] = u.Office
	}
	return payload
}

type UserRepo interface {
	Get(username string) (*User, error)
	Upsert(user *User) error
}

// InMemoryUserRepo keys users by lower-cased username.
type InMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

var _ UserRepo = (*InMemoryUserRepo)(nil)

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		users: make(map[string]User),
	}
}

func (r *InMemoryUserRepo) Get(username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %s", username)
	}
	return &u, nil
}

func (r *InMemoryUserRepo) Upsert(user *User) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("username is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(user.Username)] = *user
	return nil
}
