package game

import (
	"sort"
	"time"
)

// Игрок в рамках одной сессии. Все поля защищены мьютексом сессии.
type Player struct {
	ID        string
	Name      string
	Connected bool

	Score            int
	IncorrectGuesses int
	TurnsTaken       int
	// момент последнего верного раскрытия, тай-брейк при равных очках
	LastCorrectAt time.Time

	JoinedAt       time.Time
	DisconnectedAt time.Time

	// подсказки в руке: id из пула сессии
	clues map[int]bool
}

func newPlayer(id, name string, now time.Time) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Connected: true,
		JoinedAt:  now,
		clues:     make(map[int]bool),
	}
}

func (p *Player) holdsClue(id int) bool {
	return p.clues[id]
}

// grantClue добавляет подсказку в руку; повторная выдача - no-op.
func (p *Player) grantClue(id int) {
	p.clues[id] = true
}

// ClueIDs возвращает руку игрока в стабильном порядке.
func (p *Player) ClueIDs() []int {
	out := make([]int, 0, len(p.clues))
	for id := range p.clues {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
