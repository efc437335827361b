package db

import (
	"context"
	"time"

	"mysticgrid_server/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect открывает пул соединений и создает таблицу архива.
// Пустой URL означает, что архив выключен — возвращаем nil.
func Connect(databaseURL string) *pgxpool.Pool {
	if databaseURL == "" {
		logger.Get().Warn("DATABASE_URL не задан, архив партий выключен")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("не удалось создать пул БД", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("БД недоступна", "error", err)
	}

	if err := migrate(ctx, pool); err != nil {
		logger.Fatal("миграция не удалась", "error", err)
	}

	logger.Get().Info("подключение к БД установлено")
	return pool
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_records (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			board_size INT NOT NULL,
			players INT NOT NULL,
			winner_id TEXT NOT NULL DEFAULT '',
			winner_name TEXT NOT NULL DEFAULT '',
			winner_score INT NOT NULL DEFAULT 0,
			finish_reason TEXT NOT NULL,
			turns_used INT NOT NULL,
			cells_solved INT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}
