package server

import "github.com/ovenworks/go-backoffice-auth/accounts"

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.handleWebsocket)

	authGroup := s.engine.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.POST("/forgot-password", s.handleForgotPassword)
		authGroup.PUT("/reset-password/:token", s.handleResetPassword)

		authGroup.PUT("/change-password", Authenticate(s.tokens), s.handleChangePassword)
		authGroup.GET("/users", Authenticate(s.tokens), RequireRole(accounts.RoleAdmin), s.handleListUsers)
	}
}
