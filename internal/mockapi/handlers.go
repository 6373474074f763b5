package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/ttb-portal/internal/utils"
	"github.com/rs/zerolog/log"
)

const (
	statusOK          = "OK"
	statusError       = "Error"
	statusMFARequired = "MFA_required"

	tokenParam = "TTBSID"
)

type loginRequest struct {
	TbUser struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"TbUser"`
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type otpRequest struct {
	OTP        string `json:"otp"`
	RememberMe bool   `json:"remember_me"`
}

// envelope wraps a body the way the web services do: {"response": {...}}.
func envelope(status string, fields map[string]any) map[string]any {
	body := map[string]any{"status": status}
	for k, v := range fields {
		body[k] = v
	}
	return map[string]any{"response": body}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Resource not found.")
	}
}

// LoginHandler checks the credentials and either completes the login or starts an MFA session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		user, err := s.users.Get(req.TbUser.Username)
		if err != nil || !user.CheckPassword(req.TbUser.Password) {
			log.Info().Str("username", req.TbUser.Username).Msg("rejected login")
			writeMessage(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}

		token, id, err := s.tokens.Issue(user)
		if err != nil {
			log.Error().Err(err).Msg("failed to issue token")
			writeMessage(w, http.StatusInternalServerError, "Server error. Please try again later.")
			return
		}

		if user.MFADisabled {
			data := map[string]any{tokenParam: token, "0": user.Payload()}
			writeJSON(w, http.StatusOK, envelope(statusOK, map[string]any{"data": data}))
			return
		}

		if err := s.sessions.Create(id, user.Username, user.Phone); err != nil {
			log.Error().Err(err).Msg("failed to create MFA session")
			writeMessage(w, http.StatusInternalServerError, "Server error. Please try again later.")
			return
		}
		if user.Enrolled() {
			s.logOTP(user, user.Phone)
		}

		data := map[string]any{
			tokenParam:     token,
			"status":       statusMFARequired,
			"MFA_enrolled": user.Enrolled(),
			"phone":        user.Phone,
			"email":        user.Email,
		}
		writeJSON(w, http.StatusOK, envelope(statusOK, map[string]any{"data": data}))
	}
}

// SendOTPHandler records the phone for the pending session and "texts" it a code.
func (s *Server) SendOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, session, ok := s.pendingSession(w, r)
		if !ok {
			return
		}

		var req phoneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		phone := utils.DigitsOnly(req.Phone)
		if len(phone) != 10 || phone != req.Phone {
			writeJSON(w, http.StatusOK, envelope(statusError, map[string]any{"message": "Invalid phone number."}))
			return
		}

		allowed, found := s.sessions.AllowSend(id, phone)
		if !found {
			writeMessage(w, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}
		if !allowed {
			writeJSON(w, http.StatusOK, envelope(statusError, map[string]any{
				"data": []any{"Please wait before requesting another code."},
			}))
			return
		}

		user, err := s.users.Get(session.Username)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}
		s.logOTP(user, phone)
		writeJSON(w, http.StatusOK, envelope(statusOK, map[string]any{
			"message": "Verification code sent.",
			"data":    map[string]any{"phone": phone},
		}))
	}
}

// VerifyOTPHandler completes the login when the code matches.
func (s *Server) VerifyOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, session, ok := s.pendingSession(w, r)
		if !ok {
			return
		}

		var req otpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		user, err := s.users.Get(session.Username)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}
		if session.Phone == "" || !s.otps.Validate(user, req.OTP, NowTimeFunc()) {
			writeJSON(w, http.StatusOK, envelope(statusError, map[string]any{
				"data": map[string]any{"message": "Invalid verification code."},
			}))
			return
		}

		if user.Phone != session.Phone {
			user.Phone = session.Phone
			user.Modified = NowTimeFunc().UTC()
			if err := s.users.Upsert(user); err != nil {
				log.Error().Err(err).Msg("failed to enrol phone")
			}
		}
		s.sessions.Delete(id)

		token, _, err := s.tokens.Issue(user)
		if err != nil {
			log.Error().Err(err).Msg("failed to issue token")
			writeMessage(w, http.StatusInternalServerError, "Server error. Please try again later.")
			return
		}
		log.Info().Str("username", user.Username).Bool("remember_me", req.RememberMe).Msg("MFA verified")
		writeJSON(w, http.StatusOK, envelope(statusOK, map[string]any{
			tokenParam: token,
			"data":     map[string]any{"0": user.Payload()},
		}))
	}
}

// pendingSession resolves the TTBSID query parameter to an MFA session, writing a 401 when it
// cannot.
func (s *Server) pendingSession(w http.ResponseWriter, r *http.Request) (string, Session, bool) {
	claims, err := s.tokens.Verify(r.URL.Query().Get(tokenParam))
	if err != nil {
		log.Debug().Err(err).Msg("rejected session token")
		writeMessage(w, http.StatusUnauthorized, "Session expired. Please login again.")
		return "", Session{}, false
	}
	session, ok := s.sessions.Get(claims.ID)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Session expired. Please login again.")
		return "", Session{}, false
	}
	return claims.ID, session, true
}

func (s *Server) logOTP(user *User, phone string) {
	code, err := s.otps.Code(user, NowTimeFunc())
	if err != nil {
		log.Error().Err(err).Msg("failed to generate OTP")
		return
	}
	log.Info().Str("phone", utils.FormatPhone(phone)).Str("otp", code).Msg("verification code")
}
