package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ovenworks/go-backoffice-auth/accounts"
)

// handleListUsers serves the admin user listing with pagination, search, and
// role filtering pushed down to the repository.
func (s *Server) handleListUsers(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	params := accounts.ListParams{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Search: c.Query("search"),
		SortBy: sortField(c.DefaultQuery("sortBy", "id")),
		Order:  c.DefaultQuery("order", "asc"),
	}
	if role := strings.ToUpper(c.Query("role")); role != "" {
		params.Role = accounts.Role(role)
	}

	list, total, err := s.accounts.List(params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": list,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
			"hasMore":    params.Offset+len(list) < total,
		},
	})
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

// sortField translates the frontend's camelCase sort keys to columns.
func sortField(sortBy string) string {
	if sortBy == "createdAt" {
		return "created_at"
	}
	return sortBy
}
