package game

import (
	"sync"
	"time"
)

// Настройки реестра: базовая конфигурация сессий и сроки жизни сущностей,
// которые убирает периодический sweep.
type ManagerConfig struct {
	Session SessionConfig

	// завершенные сессии хранятся еще немного, чтобы клиенты успели
	// забрать финальный снапшот
	FinishedGrace time.Duration
	// лобби без старта живет не дольше этого срока
	LobbyTTL time.Duration
	// отключенный игрок выбывает из waiting-сущностей после этого срока
	DisconnectGrace time.Duration
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Session:         DefaultSessionConfig(),
		FinishedGrace:   30 * time.Minute,
		LobbyTTL:        time.Hour,
		DisconnectGrace: 10 * time.Minute,
	}
}

// Статистика реестра: только счетчики, агрегированный read-only срез.
type Stats struct {
	ActiveLobbies    int `json:"active_lobbies"`
	ActiveSessions   int `json:"active_sessions"`
	PlayingSessions  int `json:"playing_sessions"`
	FinishedSessions int `json:"finished_sessions"`
}

// Manager - реестр лобби и игровых сессий на процесс. Явно создаваемый и
// внедряемый компонент: тесты строят изолированные экземпляры, никакого
// глобального изменяемого состояния на уровне пакета.
type Manager struct {
	cfg ManagerConfig

	mu            sync.RWMutex
	lobbies       map[string]*Lobby
	sessions      map[string]*GameSession
	playerLobby   map[string]string
	playerSession map[string]string
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:           cfg,
		lobbies:       make(map[string]*Lobby),
		sessions:      make(map[string]*GameSession),
		playerLobby:   make(map[string]string),
		playerSession: make(map[string]string),
	}
}

// CreateLobby открывает лобби с создателем в роли хоста.
// boardSize = 0 означает размер из конфигурации.
func (m *Manager) CreateLobby(playerID, name string, boardSize int, now time.Time) (*LobbyView, error) {
	if boardSize == 0 {
		boardSize = m.cfg.Session.BoardSize
	}
	if boardSize < MinBoardSize || boardSize > MaxBoardSize {
		return nil, ErrBoardSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l := newLobby(playerID, name, boardSize, m.cfg.Session.MaxPlayers, now)
	m.lobbies[l.ID] = l
	m.playerLobby[playerID] = l.ID
	return l.view(m.cfg.Session.MinPlayers), nil
}

func (m *Manager) JoinLobby(lobbyID, playerID, name string, now time.Time) (*LobbyView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if err := l.addPlayer(playerID, name, now); err != nil {
		return nil, err
	}
	m.playerLobby[playerID] = lobbyID
	return l.view(m.cfg.Session.MinPlayers), nil
}

// LeaveLobby идемпотентен; пустое лобби удаляется сразу.
func (m *Manager) LeaveLobby(lobbyID, playerID string) (*LobbyView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	l.removePlayer(playerID)
	delete(m.playerLobby, playerID)
	if len(l.players) == 0 {
		delete(m.lobbies, lobbyID)
		return nil, nil
	}
	return l.view(m.cfg.Session.MinPlayers), nil
}

func (m *Manager) LobbyState(lobbyID string) (*LobbyView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l.view(m.cfg.Session.MinPlayers), nil
}

// StartGame превращает лобби в играющую сессию. Запускает только хост.
// Ошибка генерации поля уходит сюда, к создателю, а не игрокам в игре.
func (m *Manager) StartGame(lobbyID, playerID string, now time.Time) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if playerID != l.HostID {
		return nil, ErrNotHost
	}
	if !l.canStart(m.cfg.Session.MinPlayers) {
		return nil, ErrNotEnoughPlayers
	}

	s, err := NewSessionFromLobby(l.snapshot(m.cfg.Session), m.cfg.Session, now)
	if err != nil {
		return nil, err
	}
	if err := s.Start(l.HostID, now); err != nil {
		return nil, err
	}

	l.started = true
	m.sessions[s.ID] = s
	for _, p := range l.players {
		delete(m.playerLobby, p.ID)
		m.playerSession[p.ID] = s.ID
	}
	delete(m.lobbies, lobbyID)
	return s, nil
}

func (m *Manager) GetSession(id string) (*GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SessionForPlayer находит сессию по игроку (ресинхронизация, реконнект).
func (m *Manager) SessionForPlayer(playerID string) (*GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.playerSession[playerID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// LobbyForPlayer возвращает id лобби, где числится игрок.
func (m *Manager) LobbyForPlayer(playerID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.playerLobby[playerID]
	return id, ok
}

func (m *Manager) RemoveSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeSessionLocked(id)
}

func (m *Manager) removeSessionLocked(id string) {
	delete(m.sessions, id)
	for pid, sid := range m.playerSession {
		if sid == id {
			delete(m.playerSession, pid)
		}
	}
}

// LeaveSession выводит игрока из его сессии. Идемпотентно.
func (m *Manager) LeaveSession(playerID string, now time.Time) *GameSession {
	m.mu.Lock()
	id, ok := m.playerSession[playerID]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.playerSession, playerID)
	s := m.sessions[id]
	m.mu.Unlock()

	if s != nil {
		s.Leave(playerID, now)
	}
	return s
}

// HandleDisconnect помечает игрока отключенным везде, где он числится.
// Возвращает затронутую сессию для рассылки обновления.
func (m *Manager) HandleDisconnect(playerID string, now time.Time) *GameSession {
	m.mu.Lock()
	if lid, ok := m.playerLobby[playerID]; ok {
		if l, ok := m.lobbies[lid]; ok {
			if p := l.find(playerID); p != nil {
				p.Connected = false
				p.DisconnectedAt = now
			}
		}
	}
	var s *GameSession
	if sid, ok := m.playerSession[playerID]; ok {
		s = m.sessions[sid]
	}
	m.mu.Unlock()

	if s != nil {
		s.HandleDisconnect(playerID, now)
	}
	return s
}

// HandleReconnect восстанавливает подключение игрока.
func (m *Manager) HandleReconnect(playerID string, now time.Time) *GameSession {
	m.mu.Lock()
	if lid, ok := m.playerLobby[playerID]; ok {
		if l, ok := m.lobbies[lid]; ok {
			if p := l.find(playerID); p != nil {
				p.Connected = true
				p.DisconnectedAt = time.Time{}
			}
		}
	}
	var s *GameSession
	if sid, ok := m.playerSession[playerID]; ok {
		s = m.sessions[sid]
	}
	m.mu.Unlock()

	if s != nil {
		s.HandleReconnect(playerID)
	}
	return s
}

// Tick продвигает таймеры играющих сессий. Возвращает сессии, завершенные
// именно этим вызовом, чтобы транспорт разослал финальные снапшоты.
func (m *Manager) Tick(now time.Time) []*GameSession {
	m.mu.RLock()
	all := make([]*GameSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	var expired []*GameSession
	for _, s := range all {
		if s.Tick(now) {
			expired = append(expired, s)
		}
	}
	return expired
}

// Sweep убирает просроченные сущности: завершенные сессии старше грейс-
// периода, протухшие лобби и давно отключенных игроков из waiting-состава.
func (m *Manager) Sweep(now time.Time) (sessionsRemoved, lobbiesRemoved, playersEvicted int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.mu.Lock()
		finished := s.state == StateFinished
		finishedAt := s.finishedAt
		s.mu.Unlock()
		if finished && now.Sub(finishedAt) > m.cfg.FinishedGrace {
			m.removeSessionLocked(id)
			sessionsRemoved++
		}
	}

	for id, l := range m.lobbies {
		for _, p := range append([]*LobbyPlayer(nil), l.players...) {
			if !p.Connected && !p.DisconnectedAt.IsZero() &&
				now.Sub(p.DisconnectedAt) > m.cfg.DisconnectGrace {
				l.removePlayer(p.ID)
				delete(m.playerLobby, p.ID)
				playersEvicted++
			}
		}
		if len(l.players) == 0 || now.Sub(l.CreatedAt) > m.cfg.LobbyTTL {
			for _, p := range l.players {
				delete(m.playerLobby, p.ID)
			}
			delete(m.lobbies, id)
			lobbiesRemoved++
		}
	}
	return sessionsRemoved, lobbiesRemoved, playersEvicted
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Stats{ActiveLobbies: len(m.lobbies), ActiveSessions: len(m.sessions)}
	for _, s := range m.sessions {
		switch s.State() {
		case StatePlaying:
			st.PlayingSessions++
		case StateFinished:
			st.FinishedSessions++
		}
	}
	return st
}

// NewSessionFromLobby создает сессию из среза лобби: состав, размер поля и
// лимиты переносятся, статус подключения игроков сохраняется.
func NewSessionFromLobby(snap LobbySnapshot, cfg SessionConfig, now time.Time) (*GameSession, error) {
	cfg.BoardSize = snap.BoardSize
	if snap.Duration > 0 {
		cfg.Duration = snap.Duration
	}
	if snap.MinPlayers > 0 {
		cfg.MinPlayers = snap.MinPlayers
	}

	s, err := NewSession(cfg, now)
	if err != nil {
		return nil, err
	}
	for _, p := range snap.Players {
		if err := s.Join(p.ID, p.Name, now); err != nil {
			return nil, err
		}
		if !p.Connected {
			s.HandleDisconnect(p.ID, now)
		}
	}
	s.mu.Lock()
	s.hostID = snap.HostID
	s.mu.Unlock()
	return s, nil
}
