package mockapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/ttb-portal/internal/config"
	"github.com/rs/zerolog/log"
)

// Config is what the development API reads from the environment.
type Config interface {
	config.EnvConfig
	config.APIConfig
	config.CorsConfig
	config.MockAPIConfig
}

// Server is a local stand-in for the TitleToolbox web services.
type Server struct {
	env      string
	router   *mux.Router
	routes   []string
	config   Config
	users    UserRepo
	sessions *SessionRepo
	tokens   *TokenIssuer
	otps     *OTPs
}

func New(cfg Config, users UserRepo) (*Server, error) {
	if cfg == nil || users == nil {
		return nil, fmt.Errorf("[mockapi New] config and user repo are required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		router:   mux.NewRouter(),
		config:   cfg,
		users:    users,
		sessions: NewSessionRepo(cfg.GetMockOTPSendInterval()),
		tokens:   NewTokenIssuer(cfg.GetMockSigningKey(), cfg.GetAppName(), cfg.GetMockTokenExpiry()),
		otps:     NewOTPs(cfg.GetMockOTPPeriod()),
	}
	s.router.NotFoundHandler = ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...)
	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(method, path string, handler http.HandlerFunc) {
	s.routes = append(s.routes, method+" "+path)
	s.router.HandleFunc(path, handler).Methods(method, http.MethodOptions)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s %-7s%s] %s", color, method, ResetColor, path)
}

// CurrentOTP returns the code a user would have been texted right now.
func (s *Server) CurrentOTP(username string) (string, error) {
	user, err := s.users.Get(username)
	if err != nil {
		return "", err
	}
	return s.otps.Code(user, NowTimeFunc())
}
