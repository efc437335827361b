package domain

import "time"

// запись о завершенной партии для архива
type GameRecord struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	BoardSize    int       `json:"board_size"`
	Players      int       `json:"players"`
	WinnerID     string    `json:"winner_id"`
	WinnerName   string    `json:"winner_name"`
	WinnerScore  int       `json:"winner_score"`
	FinishReason string    `json:"finish_reason"`
	TurnsUsed    int       `json:"turns_used"`
	CellsSolved  int       `json:"cells_solved"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	CreatedAt    time.Time `json:"created_at"`
}
