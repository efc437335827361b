package http

import (
	"time"

	"mysticgrid_server/internal/game"
	"mysticgrid_server/internal/http/handlers"
	"mysticgrid_server/internal/http/middleware"
	"mysticgrid_server/internal/repository"
	"mysticgrid_server/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes собирает HTTP-поверхность сервера: websocket-вход,
// гостевую авторизацию и read-only статистику.
func RegisterRoutes(r *gin.Engine, manager *game.Manager, hub *ws.Hub, historyRepo *repository.HistoryRepository, version string) {
	h := handlers.NewHandler(manager, historyRepo, version)

	r.GET("/healthz", h.Healthz)
	r.GET("/ws", ws.HandleWS(hub))

	api := r.Group("/api")
	{
		// выдача токенов агрессивнее всего лимитируется
		api.POST("/guest", middleware.RateLimit(10, time.Minute), h.GuestToken)
		api.GET("/stats", middleware.RateLimit(60, time.Minute), h.Stats)
		api.GET("/history", middleware.RateLimit(60, time.Minute), h.History)
	}
}
