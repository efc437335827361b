package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Статистика реестра
func (h *Handler) Stats(c *gin.Context) {
	stats := h.Manager.Stats()
	c.JSON(http.StatusOK, gin.H{
		"active_lobbies":    stats.ActiveLobbies,
		"active_sessions":   stats.ActiveSessions,
		"playing_sessions":  stats.PlayingSessions,
		"finished_sessions": stats.FinishedSessions,
		"version":           h.Version,
	})
}

// Последние завершенные партии из архива
func (h *Handler) History(c *gin.Context) {
	if h.HistoryRepo == nil {
		c.JSON(http.StatusOK, gin.H{"games": []any{}})
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	recs, err := h.HistoryRepo.GetRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": recs})
}

// Проверка живости
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.Version})
}
