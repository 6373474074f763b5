package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/store"
	"github.com/rs/zerolog/log"
)

// API is the transport the service talks to. *transport.Client satisfies it.
type API interface {
	Post(ctx context.Context, endpoint string, body any, query map[string]string) (map[string]any, error)
}

// Config is the part of the application configuration the service reads.
type Config interface {
	GetLoginEndpoint() string
	GetSendMFAOTPEndpoint() string
	GetVerifyMFAOTPEndpoint() string
	GetDisableMFAInDev() bool
}

// Service owns the client-side session: it interprets login and MFA responses, persists the
// session to the store and broadcasts state changes to subscribers.
type Service struct {
	store  store.Store
	api    API
	config Config

	// notifyMu serializes commit and broadcast so subscribers see snapshots in commit order.
	notifyMu    sync.Mutex
	mu          sync.Mutex
	state       State
	subscribers []subscriber
	nextSubID   uint64
}

func NewService(st store.Store, api API, config Config) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("[NewService] store is required")
	}
	if api == nil {
		return nil, fmt.Errorf("[NewService] api is required")
	}
	if config == nil {
		return nil, fmt.Errorf("[NewService] config is required")
	}
	return &Service{
		store:  st,
		api:    api,
		config: config,
	}, nil
}

// profileField maps a payload field to its store key and Profile slot.
type profileField struct {
	key   string
	array bool
	set   func(p *Profile, v any)
}

var profileFields = []profileField{
	{key: store.KeyUser, set: func(p *Profile, v any) { p.User = v }},
	{key: store.KeyAddresses, array: true, set: func(p *Profile, v any) { p.Addresses = asArray(v) }},
	{key: store.KeyEmails, array: true, set: func(p *Profile, v any) { p.Emails = asArray(v) }},
	{key: store.KeyPhones, array: true, set: func(p *Profile, v any) { p.Phones = asArray(v) }},
	{key: store.KeyOffice, set: func(p *Profile, v any) { p.Office = v }},
	{key: store.KeyAssociation, set: func(p *Profile, v any) { p.Association = v }},
	{key: store.KeyLicense, set: func(p *Profile, v any) { p.License = v }},
}

func asArray(v any) []any {
	if a, ok := v.([]any); ok {
		return a
	}
	return []any{}
}

// Restore rebuilds the session from the store. Each stored key is restored independently; a
// corrupt or unreadable entry is logged and left absent.
func (s *Service) Restore(ctx context.Context) error {
	token, ok, err := s.store.Get(ctx, store.KeyToken)
	if err != nil {
		return fmt.Errorf("[Restore] %w: %w", errors.ErrStoreReadFail, err)
	}
	if !ok || token == "" {
		log.Debug().Msg("no stored session")
		return nil
	}

	next := State{Authenticated: true, Token: token}
	if v, ok := s.restoreKey(ctx, store.KeyResponseData); ok {
		next.ResponseData = v
	}
	for _, f := range profileFields {
		if v, ok := s.restoreKey(ctx, f.key); ok {
			f.set(&next.Profile, v)
		}
	}

	s.update(func(st *State) { *st = next })
	log.Info().Msg("session restored")
	return nil
}

func (s *Service) restoreKey(ctx context.Context, key string) (any, bool) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read stored session data")
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}
	v, err := decodeValue(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("error parsing stored session data")
		return nil, false
	}
	return v, true
}

func decodeValue(raw string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptEntry, "%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrapf(errors.ErrCorruptEntry, "trailing data")
	}
	return v, nil
}

// Login submits the credentials and applies the interpreted response to the session. A decoded
// response always clears the previous session first.
func (s *Service) Login(ctx context.Context, creds Credentials) (LoginOutcome, error) {
	req := loginRequest{TbUser: loginCredentials{Username: creds.Identifier, Password: creds.Secret}}
	resp, err := s.api.Post(ctx, s.config.GetLoginEndpoint(), req, nil)
	if err != nil {
		log.Debug().Err(err).Msg("login request failed")
		return LoginOutcome{}, opError("login", err, msgLoginFailed)
	}

	if err := s.clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear previous session")
		return LoginOutcome{}, &Error{Op: "login", Message: msgSessionNotSaved, Err: fmt.Errorf("%w: %w", errors.ErrStoreWriteFail, err)}
	}

	p := ParseLoginResponse(resp, creds.Identifier)
	log.Debug().
		Str("kind", p.Kind.String()).
		Bool("has_token", p.Token != "").
		Bool("has_user", p.UserPayload != nil).
		Bool("explicit_error", p.ExplicitError).
		Strs("keys", keysOf(p.Data)).
		Msg("login response")

	switch p.Kind {
	case OutcomeMFARequired:
		if s.config.GetDisableMFAInDev() {
			log.Info().Msg("MFA disabled in development mode, completing login directly")
			return s.establish(ctx, p, resp)
		}
		if err := s.store.Set(ctx, store.KeyToken, p.Token); err != nil {
			return LoginOutcome{}, &Error{Op: "login", Message: msgSessionNotSaved, Err: fmt.Errorf("%w: %w", errors.ErrStoreWriteFail, err)}
		}
		s.update(func(st *State) {
			*st = State{Token: p.Token}
		})
		msg := msgRegisterPhone
		if p.MFA.Enrolled {
			msg = msgEnterCode
		}
		log.Info().Bool("enrolled", p.MFA.Enrolled).Msg("MFA required")
		return LoginOutcome{Kind: OutcomeMFARequired, Message: msg, MFA: p.MFA, Response: resp}, nil

	case OutcomeSuccess:
		return s.establish(ctx, p, resp)

	default:
		log.Warn().Bool("explicit_error", p.ExplicitError).Msg("no token found in login response")
		return LoginOutcome{Kind: OutcomeFailure, Message: msgNoToken, Response: resp}, nil
	}
}

// establish records a fully authenticated session from a parsed login response.
func (s *Service) establish(ctx context.Context, p LoginParse, resp map[string]any) (LoginOutcome, error) {
	if err := s.store.Set(ctx, store.KeyToken, p.Token); err != nil {
		return LoginOutcome{}, &Error{Op: "login", Message: msgSessionNotSaved, Err: fmt.Errorf("%w: %w", errors.ErrStoreWriteFail, err)}
	}
	applyProfile := s.persistUserData(ctx, p.UserPayload)
	s.saveJSON(ctx, store.KeyResponseData, p.Data)

	s.update(func(st *State) {
		st.Token = p.Token
		st.Authenticated = true
		applyProfile(st)
		st.ResponseData = p.Data
	})
	return LoginOutcome{Kind: OutcomeSuccess, Message: msgLoginSuccessful, Response: resp}, nil
}

// SaveUserData persists every profile field present on payload. Absent fields are left as they
// are. TbUser is mirrored under the legacy user key.
func (s *Service) SaveUserData(ctx context.Context, payload map[string]any) {
	s.update(s.persistUserData(ctx, payload))
}

// persistUserData writes the profile fields of payload to the store and returns the mutation
// that applies them to a snapshot. The mutation is a no-op when payload has no profile fields.
func (s *Service) persistUserData(ctx context.Context, payload map[string]any) func(*State) {
	var changed []profileField
	values := make(map[string]any)

	for _, f := range profileFields {
		v, ok := payload[f.key]
		if !ok || v == nil {
			continue
		}
		if _, isArray := v.([]any); f.array && !isArray {
			continue
		}
		s.saveJSON(ctx, f.key, v)
		if f.key == store.KeyUser {
			s.saveJSON(ctx, store.KeyLegacyUser, v)
		}
		changed = append(changed, f)
		values[f.key] = v
	}

	return func(st *State) {
		for _, f := range changed {
			f.set(&st.Profile, values[f.key])
		}
	}
}

func (s *Service) saveJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("error encoding session data")
		return
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("error saving session data")
	}
}

// storedToken reads the token the MFA endpoints are called with.
func (s *Service) storedToken(ctx context.Context) string {
	token, _, err := s.store.Get(ctx, store.KeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read stored token")
		return ""
	}
	return token
}

// RegisterPhoneMFA asks the server to text an OTP to phone (digits only).
func (s *Service) RegisterPhoneMFA(ctx context.Context, phone string) (*MFAResponse, error) {
	query := map[string]string{fieldToken: s.storedToken(ctx)}
	resp, err := s.api.Post(ctx, s.config.GetSendMFAOTPEndpoint(), phoneRequest{Phone: phone}, query)
	if err != nil {
		return nil, opError("register_phone_mfa", err, msgSendOTPRequestFailed)
	}

	env := envelope(resp)
	if stringField(env, fieldStatus) != statusOK {
		msg := failureMessage(env, msgSendOTPFailed)
		log.Warn().Str("message", msg).Msg("send OTP rejected")
		return nil, &MFAError{Message: msg, Response: env, Err: errors.ErrMFARequestFailed}
	}
	log.Info().Msg("OTP sent")
	return newMFAResponse(env), nil
}

// VerifyOTP checks the code and, on success, completes the session started by Login.
func (s *Service) VerifyOTP(ctx context.Context, req OTPRequest) (LoginOutcome, error) {
	stored := s.storedToken(ctx)
	query := map[string]string{fieldToken: stored}
	resp, err := s.api.Post(ctx, s.config.GetVerifyMFAOTPEndpoint(), otpRequest{OTP: req.Code, RememberMe: req.RememberMe}, query)
	if err != nil {
		return LoginOutcome{}, opError("verify_otp", err, msgInvalidCodeRequest)
	}

	env := envelope(resp)
	log.Debug().Str("status", stringField(env, fieldStatus)).Strs("keys", keysOf(env)).Msg("OTP verification response")
	if stringField(env, fieldStatus) != statusOK {
		msg := failureMessage(env, msgInvalidCode)
		return LoginOutcome{}, &MFAError{Message: msg, Response: env, Err: errors.ErrInvalidVerificationCode}
	}

	data := env[fieldData]
	token := firstString(env[fieldToken], field(data, fieldToken), stored)
	if token != "" {
		if err := s.store.Set(ctx, store.KeyToken, token); err != nil {
			return LoginOutcome{}, &Error{Op: "verify_otp", Message: msgSessionNotSaved, Err: fmt.Errorf("%w: %w", errors.ErrStoreWriteFail, err)}
		}
	}

	user := indexed(data, userPayloadSlot)
	if !truthy(user) {
		user = data
	}
	applyProfile := func(*State) {}
	hasUser := truthy(user)
	if hasUser {
		if payload, ok := user.(map[string]any); ok {
			applyProfile = s.persistUserData(ctx, payload)
		}
		s.saveJSON(ctx, store.KeyResponseData, data)
	}

	s.update(func(st *State) {
		if token != "" {
			st.Token = token
			st.Authenticated = true
		}
		applyProfile(st)
		if hasUser {
			st.ResponseData = data
		}
	})

	log.Info().Msg("OTP verified")
	return LoginOutcome{Kind: OutcomeSuccess, Message: msgVerified, Response: env}, nil
}

// Logout removes every stored key and resets the session, even when some removals fail.
func (s *Service) Logout(ctx context.Context) error {
	err := s.clear(ctx)
	log.Info().Msg("logged out")
	return err
}

func (s *Service) clear(ctx context.Context) error {
	var errs []error
	for _, key := range store.AllKeys() {
		if err := s.store.Remove(ctx, key); err != nil {
			errs = append(errs, errors.Wrapf(err, "remove %s", key))
		}
	}
	s.update(func(st *State) { *st = State{} })
	return errors.Join(errs...)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
