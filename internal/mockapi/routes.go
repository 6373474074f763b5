package mockapi

import "net/http"

const BasePath = "/webservices"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc(http.MethodPost, BasePath+s.config.GetLoginEndpoint(), ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, BasePath+s.config.GetSendMFAOTPEndpoint(), ChainMiddleware(s.SendOTPHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc(http.MethodPost, BasePath+s.config.GetVerifyMFAOTPEndpoint(), ChainMiddleware(s.VerifyOTPHandler(), s.APIMiddleware()...))
}
