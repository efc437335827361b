package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счетчики и датчики игрового сервера, отдаются через /metrics.
var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mysticgrid_connected_clients",
		Help: "Текущее число подключенных websocket-клиентов.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mysticgrid_active_sessions",
		Help: "Текущее число живых игровых сессий.",
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mysticgrid_sessions_started_total",
		Help: "Всего запущенных игровых сессий.",
	})

	SessionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mysticgrid_sessions_finished_total",
		Help: "Завершенные сессии по причинам.",
	}, []string{"reason"})

	Guesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mysticgrid_guesses_total",
		Help: "Обработанные догадки по исходу.",
	}, []string{"outcome"})

	CluesShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mysticgrid_clues_shared_total",
		Help: "Всего переданных между игроками подсказок.",
	})
)
