package handlers

import (
	"net/http"
	"strings"

	"mysticgrid_server/internal/service"

	"github.com/gin-gonic/gin"
)

const maxNameLen = 32

// Выдача гостевого токена. Имя не уникально, идентичность - player_id в токене.
func (h *Handler) GuestToken(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "имя обязательно"})
		return
	}
	if len([]rune(name)) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}

	token, playerID, err := service.IssueGuestToken(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выдать токен"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"player_id": playerID,
		"name":      name,
	})
}
