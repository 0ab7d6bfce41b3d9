package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/auth"
	"github.com/ovenworks/go-backoffice-auth/forms"
)

var adminOnly = []accounts.Role{accounts.RoleAdmin}

func (s *Server) handleRegister(c *gin.Context) {
	var form forms.Register
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, password, and name are required"})
		return
	}

	account, tokens, err := s.auth.Register(form.Email, form.Password, form.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	s.gateway.BroadcastToRoles(adminOnly, "user:registered", gin.H{
		"id":    account.ID,
		"email": account.Email,
		"name":  account.Name,
		"role":  account.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    account,
		"tokens":  tokens,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var form forms.Login
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	account, tokens, err := s.auth.Login(form.Email, form.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	s.gateway.BroadcastToRoles(adminOnly, "user:loggedin", gin.H{
		"userId": account.ID,
		"email":  account.Email,
		"name":   account.Name,
		"role":   account.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    account,
		"tokens":  tokens,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var form forms.Refresh
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is missing"})
		return
	}

	tokens, err := s.auth.Refresh(form.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication is required"})
		return
	}

	var form forms.ChangePassword
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current and new passwords are required"})
		return
	}

	if err := s.auth.ChangePassword(principal.AccountID, form.CurrentPassword, form.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	s.gateway.BroadcastToAccount(principal.AccountID, "notification:new", gin.H{
		"type":    "security",
		"message": "Your password was changed",
	})

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var form forms.ForgotPassword
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	if err := s.auth.RequestPasswordReset(form.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": auth.ResetRequestedMessage})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var form forms.ResetPassword
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	if err := s.auth.ResetPassword(c.Param("token"), form.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been changed successfully."})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "online": len(s.gateway.ListOnline())})
}
