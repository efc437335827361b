package repository

import (
	"context"

	"mysticgrid_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// отвечает за операции с базой данных для архива партий
type HistoryRepository struct {
	db *pgxpool.Pool
}

// создает новый репозиторий архива партий
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// сохраняет запись о завершенной партии
func (r *HistoryRepository) Create(ctx context.Context, rec *domain.GameRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO game_records (session_id, board_size, players, winner_id, winner_name,
			winner_score, finish_reason, turns_used, cells_solved, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.SessionID, rec.BoardSize, rec.Players, rec.WinnerID, rec.WinnerName,
		rec.WinnerScore, rec.FinishReason, rec.TurnsUsed, rec.CellsSolved, rec.StartedAt, rec.FinishedAt)
	return err
}

// возвращает последние завершенные партии
func (r *HistoryRepository) GetRecent(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, board_size, players, winner_id, winner_name,
			winner_score, finish_reason, turns_used, cells_solved, started_at, finished_at, created_at
		FROM game_records
		ORDER BY finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGameRecords(rows)
}

// возвращает партии, в которых победил указанный игрок
func (r *HistoryRepository) GetByWinner(ctx context.Context, winnerID string, limit int) ([]*domain.GameRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, board_size, players, winner_id, winner_name,
			winner_score, finish_reason, turns_used, cells_solved, started_at, finished_at, created_at
		FROM game_records
		WHERE winner_id = $1
		ORDER BY finished_at DESC
		LIMIT $2
	`, winnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGameRecords(rows)
}

// преобразует строки из БД в структуры GameRecord
func scanGameRecords(rows pgx.Rows) ([]*domain.GameRecord, error) {
	var recs []*domain.GameRecord
	for rows.Next() {
		var rec domain.GameRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.BoardSize, &rec.Players, &rec.WinnerID,
			&rec.WinnerName, &rec.WinnerScore, &rec.FinishReason, &rec.TurnsUsed, &rec.CellsSolved,
			&rec.StartedAt, &rec.FinishedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
