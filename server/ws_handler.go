package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ovenworks/go-backoffice-auth/realtime"
	"github.com/rs/zerolog/log"
)

// handleWebsocket authenticates the handshake and hands the connection to
// the gateway. Rejection happens before the upgrade, so a bad token never
// produces a connection or a presence broadcast.
func (s *Server) handleWebsocket(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		raw, _ = bearerToken(c.GetHeader("Authorization"))
	}
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication error: Token not provided"})
		return
	}

	claims, err := s.tokens.VerifyAccessToken(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication error: Invalid token"})
		return
	}

	// The token may outlive its account; re-check before admitting.
	account, err := s.accounts.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication error: User not found"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkWSOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.gateway.Register(realtime.NewClient(s.gateway, conn, account.ID, account.Role))
}

func (s *Server) checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.config.GetAllowedOrigin()
}
