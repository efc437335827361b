package game

import (
	"time"

	"github.com/google/uuid"
)

// Lobby - комната ожидания до старта игры. Простая бухгалтерия: состав,
// хост, размер поля. Синхронизацию обеспечивает мьютекс GameManager,
// которому лобби принадлежит.
type Lobby struct {
	ID        string
	HostID    string
	BoardSize int
	MaxPlayers int
	CreatedAt time.Time

	players []*LobbyPlayer
	started bool
}

type LobbyPlayer struct {
	ID             string
	Name           string
	Connected      bool
	JoinedAt       time.Time
	DisconnectedAt time.Time
}

func newLobby(hostID, hostName string, boardSize, maxPlayers int, now time.Time) *Lobby {
	l := &Lobby{
		ID:         "lobby_" + uuid.NewString()[:8],
		HostID:     hostID,
		BoardSize:  boardSize,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
	}
	l.players = append(l.players, &LobbyPlayer{ID: hostID, Name: hostName, Connected: true, JoinedAt: now})
	return l
}

func (l *Lobby) find(playerID string) *LobbyPlayer {
	for _, p := range l.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (l *Lobby) addPlayer(playerID, name string, now time.Time) error {
	if l.started {
		return ErrAlreadyStarted
	}
	if p := l.find(playerID); p != nil {
		p.Connected = true
		p.DisconnectedAt = time.Time{}
		return nil
	}
	if len(l.players) >= l.MaxPlayers {
		return ErrLobbyFull
	}
	l.players = append(l.players, &LobbyPlayer{ID: playerID, Name: name, Connected: true, JoinedAt: now})
	return nil
}

// removePlayer выкидывает игрока; при уходе хоста хостом становится
// следующий по порядку. Возвращает false, если игрока не было.
func (l *Lobby) removePlayer(playerID string) bool {
	for i, p := range l.players {
		if p.ID == playerID {
			l.players = append(l.players[:i], l.players[i+1:]...)
			if l.HostID == playerID && len(l.players) > 0 {
				l.HostID = l.players[0].ID
			}
			return true
		}
	}
	return false
}

func (l *Lobby) canStart(minPlayers int) bool {
	return !l.started && len(l.players) >= minPlayers
}

// Состояние лобби для клиентов.
type LobbyPlayerView struct {
	ID        string `json:"player_id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

type LobbyView struct {
	LobbyID    string            `json:"lobby_id"`
	HostID     string            `json:"host_player_id"`
	Players    []LobbyPlayerView `json:"players"`
	MaxPlayers int               `json:"max_players"`
	BoardSize  int               `json:"board_size"`
	CanStart   bool              `json:"can_start"`
}

func (l *Lobby) view(minPlayers int) *LobbyView {
	v := &LobbyView{
		LobbyID:    l.ID,
		HostID:     l.HostID,
		MaxPlayers: l.MaxPlayers,
		BoardSize:  l.BoardSize,
		CanStart:   l.canStart(minPlayers),
	}
	for _, p := range l.players {
		v.Players = append(v.Players, LobbyPlayerView{ID: p.ID, Name: p.Name, Connected: p.Connected})
	}
	return v
}

// LobbySnapshot - то, что лобби передает создателю сессии в момент старта.
type LobbySnapshot struct {
	LobbyID    string
	HostID     string
	Players    []LobbyPlayerView
	BoardSize  int
	Duration   time.Duration
	MinPlayers int
}

func (l *Lobby) snapshot(cfg SessionConfig) LobbySnapshot {
	snap := LobbySnapshot{
		LobbyID:    l.ID,
		HostID:     l.HostID,
		BoardSize:  l.BoardSize,
		Duration:   cfg.Duration,
		MinPlayers: cfg.MinPlayers,
	}
	for _, p := range l.players {
		snap.Players = append(snap.Players, LobbyPlayerView{ID: p.ID, Name: p.Name, Connected: p.Connected})
	}
	return snap
}
