package handlers

import (
	"mysticgrid_server/internal/game"
	"mysticgrid_server/internal/repository"
)

// Handler содержит зависимости HTTP-обработчиков.
type Handler struct {
	Manager     *game.Manager
	HistoryRepo *repository.HistoryRepository // nil = архив выключен
	Version     string
}

func NewHandler(manager *game.Manager, historyRepo *repository.HistoryRepository, version string) *Handler {
	return &Handler{
		Manager:     manager,
		HistoryRepo: historyRepo,
		Version:     version,
	}
}
