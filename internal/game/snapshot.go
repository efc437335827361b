package game

import "time"

// Публичное состояние игрока в снапшоте.
type PlayerView struct {
	ID               string `json:"player_id"`
	Name             string `json:"name"`
	Connected        bool   `json:"connected"`
	Score            int    `json:"score"`
	TurnsTaken       int    `json:"turns_taken"`
	IncorrectGuesses int    `json:"incorrect_guesses"`
}

// Раскрытая часть ячейки. Скрытые атрибуты не покидают сервер.
type CellView struct {
	ShapeRevealed  bool   `json:"shape_revealed"`
	NumberRevealed bool   `json:"number_revealed"`
	Shape          *Shape `json:"shape,omitempty"`
	ShapeEmoji     string `json:"shape_emoji,omitempty"`
	Number         *int   `json:"number,omitempty"`
	SolvedBy       string `json:"solved_by"`
}

// ClueView - подсказка в руке получателя вместе с текстом.
type ClueView struct {
	Clue
	Text string `json:"text"`
}

// StateSnapshot - рассылаемое состояние сессии, персонализированное под
// получателя: руки других игроков в него не попадают.
type StateSnapshot struct {
	SessionID      string              `json:"session_id"`
	GameState      SessionState        `json:"game_state"`
	BoardSize      int                 `json:"board_size"`
	Players        []PlayerView        `json:"players"`
	CurrentTurn    string              `json:"current_turn"`
	IsMyTurn       bool                `json:"is_my_turn"`
	TurnCount      int                 `json:"turn_count"`
	MaxTurns       int                 `json:"max_turns"`
	TurnsRemaining int                 `json:"turns_remaining"`
	TimeRemaining  int                 `json:"time_remaining"`
	CellsSolved    int                 `json:"cells_solved"`
	CellsRemaining int                 `json:"cells_remaining"`
	TotalCells     int                 `json:"total_cells"`
	SolvedCells    map[string]CellView `json:"solved_cells"`
	Clues          []ClueView          `json:"clues"`
	Winner         string              `json:"winner,omitempty"`
	FinishReason   FinishReason        `json:"finish_reason,omitempty"`
}

// Snapshot - единственная авторитетная операция чтения состояния: клиент
// может вызывать ее идемпотентно в любой момент для ресинхронизации.
func (s *GameSession) Snapshot(playerID string, now time.Time) *StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &StateSnapshot{
		SessionID:   s.ID,
		GameState:   s.state,
		BoardSize:   s.board.Size,
		TurnCount:   s.turnCount,
		MaxTurns:    s.cfg.MaxTurns,
		TotalCells:  s.board.Size * s.board.Size,
		SolvedCells: make(map[string]CellView, len(s.solved)),
	}

	if s.cfg.MaxTurns > 0 {
		snap.TurnsRemaining = s.cfg.MaxTurns - s.turnCount
		if snap.TurnsRemaining < 0 {
			snap.TurnsRemaining = 0
		}
	}
	snap.TimeRemaining = s.timeRemainingLocked(now)

	for _, p := range s.players {
		snap.Players = append(snap.Players, PlayerView{
			ID:               p.ID,
			Name:             p.Name,
			Connected:        p.Connected,
			Score:            p.Score,
			TurnsTaken:       p.TurnsTaken,
			IncorrectGuesses: p.IncorrectGuesses,
		})
	}

	if s.state == StatePlaying && len(s.players) > 0 {
		snap.CurrentTurn = s.players[s.currentTurn].ID
		snap.IsMyTurn = snap.CurrentTurn == playerID
	}

	fully := 0
	for pos, sc := range s.solved {
		view := CellView{
			ShapeRevealed:  sc.ShapeRevealed,
			NumberRevealed: sc.NumberRevealed,
			SolvedBy:       sc.SolvedBy,
		}
		// решение отдается только в раскрытой части
		if sc.ShapeRevealed {
			sh := sc.Solution.Shape
			view.Shape = &sh
			view.ShapeEmoji = sh.Emoji()
		}
		if sc.NumberRevealed {
			n := sc.Solution.Number
			view.Number = &n
		}
		if sc.fullyRevealed() {
			fully++
		}
		snap.SolvedCells[pos.Key()] = view
	}
	snap.CellsSolved = fully
	snap.CellsRemaining = snap.TotalCells - fully

	if p := s.findLocked(playerID); p != nil {
		for _, id := range p.ClueIDs() {
			cl := s.clues[id]
			snap.Clues = append(snap.Clues, ClueView{Clue: cl, Text: cl.String()})
		}
	}

	if s.state == StateFinished {
		snap.Winner = s.winnerID
		snap.FinishReason = s.finishReason
	}
	return snap
}

func (s *GameSession) timeRemainingLocked(now time.Time) int {
	switch s.state {
	case StateWaiting:
		return int(s.cfg.Duration.Seconds())
	case StateFinished:
		return 0
	}
	rem := s.endsAt.Sub(now)
	if rem < 0 {
		rem = 0
	}
	return int(rem.Seconds())
}
