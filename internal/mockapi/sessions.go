package mockapi

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Session tracks a token that was issued by login and still needs a second factor.
type Session struct {
	Username string
	Phone    string
	limiter  *rate.Limiter
}

// SessionRepo holds pending MFA sessions keyed by token id.
type SessionRepo struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	sendInterval time.Duration
}

func NewSessionRepo(sendInterval time.Duration) *SessionRepo {
	return &SessionRepo{
		sessions:     make(map[string]*Session),
		sendInterval: sendInterval,
	}
}

func (r *SessionRepo) Create(id, username, phone string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &Session{
		Username: username,
		Phone:    phone,
		limiter:  rate.NewLimiter(rate.Every(r.sendInterval), 1),
	}
	return nil
}

func (r *SessionRepo) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// AllowSend reports whether another OTP may be sent for the session now and records the phone
// it goes to.
func (r *SessionRepo) AllowSend(id, phone string) (allowed bool, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false, false
	}
	if !s.limiter.AllowN(NowTimeFunc(), 1) {
		return false, true
	}
	s.Phone = phone
	return true, true
}

func (r *SessionRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
