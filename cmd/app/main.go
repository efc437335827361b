package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mysticgrid_server/internal/config"
	"mysticgrid_server/internal/db"
	"mysticgrid_server/internal/game"
	httpServer "mysticgrid_server/internal/http"
	"mysticgrid_server/internal/http/middleware"
	"mysticgrid_server/internal/logger"
	"mysticgrid_server/internal/repository"
	"mysticgrid_server/internal/service"
	"mysticgrid_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	// Инициализация структурированного логгера
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	var historyRepo *repository.HistoryRepository
	if dbPool != nil {
		defer dbPool.Close()
		historyRepo = repository.NewHistoryRepository(dbPool)
	}

	managerCfg := game.DefaultManagerConfig()
	managerCfg.Session.BoardSize = cfg.BoardSize
	managerCfg.Session.MinPlayers = cfg.MinPlayers
	managerCfg.Session.MaxPlayers = cfg.MaxPlayers
	managerCfg.Session.Duration = cfg.SessionDuration
	managerCfg.Session.MaxTurns = cfg.MaxTurns
	managerCfg.Session.RewardAttribute = cfg.RewardAttribute
	managerCfg.Session.RewardCellBonus = cfg.RewardCellBonus
	managerCfg.Session.GuessPenalty = cfg.GuessPenalty
	managerCfg.Session.Generator.SurplusClues = cfg.SurplusClues
	managerCfg.Session.Generator.ClueBudget = cfg.ClueBudget

	manager := game.NewManager(managerCfg)
	hub := ws.NewHub(manager, historyRepo)
	hub.StartCleanup()

	r := gin.Default()

	// CORS для прода и связи фронта с бэкендом(разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, manager, hub, historyRepo, Version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
