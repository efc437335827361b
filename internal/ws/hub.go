package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"mysticgrid_server/internal/domain"
	"mysticgrid_server/internal/game"
	"mysticgrid_server/internal/metrics"
	"mysticgrid_server/internal/repository"
)

// Hub держит активные соединения и переводит websocket-операции в вызовы
// игрового реестра. Вся игровая логика живет в game, хаб только доставляет.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	archived map[string]bool // сессии, уже записанные в архив

	Manager     *game.Manager
	HistoryRepo *repository.HistoryRepository // nil = архив выключен
}

func NewHub(manager *game.Manager, historyRepo *repository.HistoryRepository) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		archived:    make(map[string]bool),
		Manager:     manager,
		HistoryRepo: historyRepo,
	}
}

// Register привязывает соединение к игроку. Повторное подключение того же
// игрока вытесняет старое соединение и восстанавливает его в лобби/сессии.
func (h *Hub) Register(c *Client) {
	now := time.Now()

	h.mu.Lock()
	if old, ok := h.clients[c.PlayerID]; ok && old != c {
		log.Printf("Hub.Register: игрок=%s уже подключен, вытесняем старое соединение", c.PlayerID)
		_ = old.Conn.Close()
	} else {
		metrics.ConnectedClients.Inc()
	}
	h.clients[c.PlayerID] = c
	h.mu.Unlock()

	log.Printf("Hub.Register: игрок=%s (%s) подключен", c.PlayerID, c.Name)

	if s := h.Manager.HandleReconnect(c.PlayerID, now); s != nil {
		log.Printf("Hub.Register: игрок=%s восстановлен в сессии=%s", c.PlayerID, s.ID)
		h.broadcastSession(s, now)
		return
	}
	if lobbyID, ok := h.Manager.LobbyForPlayer(c.PlayerID); ok {
		if view, err := h.Manager.LobbyState(lobbyID); err == nil {
			h.broadcastLobby(view)
		}
	}
}

// OnDisconnect вызывается readPump'ом при обрыве соединения.
func (h *Hub) OnDisconnect(c *Client) {
	now := time.Now()

	h.mu.Lock()
	current, ok := h.clients[c.PlayerID]
	if ok && current == c {
		delete(h.clients, c.PlayerID)
		metrics.ConnectedClients.Dec()
	}
	h.mu.Unlock()

	if !ok || current != c {
		// соединение уже вытеснено реконнектом, состояние игрока не трогаем
		return
	}

	log.Printf("Hub.OnDisconnect: игрок=%s", c.PlayerID)

	lobbyID, inLobby := h.Manager.LobbyForPlayer(c.PlayerID)
	if s := h.Manager.HandleDisconnect(c.PlayerID, now); s != nil {
		h.finalizeIfFinished(s, now)
		h.broadcastSession(s, now)
	}
	if inLobby {
		if view, err := h.Manager.LobbyState(lobbyID); err == nil {
			h.broadcastLobby(view)
		}
	}
}

// HandleMessage разбирает конверт и выполняет операцию.
// Ошибки уходят только отправителю, остальные получают обновления состояния.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Hub.HandleMessage: игрок=%s не удалось разобрать конверт: %v", c.PlayerID, err)
		h.sendErrorKind(c, "bad_message", "не удалось разобрать сообщение")
		return
	}

	now := time.Now()

	switch env.Type {
	case "create_lobby":
		h.handleCreateLobby(c, env.Payload, now)
	case "join_lobby":
		h.handleJoinLobby(c, env.Payload, now)
	case "leave_lobby":
		h.handleLeaveLobby(c)
	case "start_game":
		h.handleStartGame(c, now)
	case "submit_solution":
		h.handleSubmitSolution(c, env.Payload, now)
	case "share_clue":
		h.handleShareClue(c, env.Payload, now)
	case "get_state":
		h.handleGetState(c, now)
	case "leave_session":
		h.handleLeaveSession(c, now)
	case "terminate_session":
		h.handleTerminate(c, now)
	default:
		log.Printf("Hub.HandleMessage: игрок=%s неизвестная операция=%s", c.PlayerID, env.Type)
		h.sendErrorKind(c, "unknown_op", "неизвестная операция: "+env.Type)
	}
}

func (h *Hub) handleCreateLobby(c *Client, payload json.RawMessage, now time.Time) {
	var p createLobbyPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			h.sendErrorKind(c, "bad_message", "не удалось разобрать payload")
			return
		}
	}

	view, err := h.Manager.CreateLobby(c.PlayerID, c.Name, p.BoardSize, now)
	if err != nil {
		h.sendError(c, err)
		return
	}
	log.Printf("Hub.handleCreateLobby: игрок=%s создал лобби=%s размер=%d", c.PlayerID, view.LobbyID, view.BoardSize)
	h.send(c.PlayerID, Message{Type: "lobby_created", Payload: view})
}

func (h *Hub) handleJoinLobby(c *Client, payload json.RawMessage, now time.Time) {
	var p joinLobbyPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.LobbyID == "" {
		h.sendErrorKind(c, "bad_message", "lobby_id обязателен")
		return
	}

	view, err := h.Manager.JoinLobby(p.LobbyID, c.PlayerID, c.Name, now)
	if err != nil {
		h.sendError(c, err)
		return
	}
	log.Printf("Hub.handleJoinLobby: игрок=%s вошел в лобби=%s (игроков=%d)", c.PlayerID, p.LobbyID, len(view.Players))
	h.broadcastLobby(view)
}

func (h *Hub) handleLeaveLobby(c *Client) {
	lobbyID, ok := h.Manager.LobbyForPlayer(c.PlayerID)
	if !ok {
		h.sendError(c, game.ErrLobbyNotFound)
		return
	}

	view, err := h.Manager.LeaveLobby(lobbyID, c.PlayerID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	log.Printf("Hub.handleLeaveLobby: игрок=%s покинул лобби=%s", c.PlayerID, lobbyID)
	h.send(c.PlayerID, Message{Type: "lobby_left", Payload: map[string]any{"lobby_id": lobbyID}})
	if view != nil {
		h.broadcastLobby(view)
	}
}

func (h *Hub) handleStartGame(c *Client, now time.Time) {
	lobbyID, ok := h.Manager.LobbyForPlayer(c.PlayerID)
	if !ok {
		h.sendError(c, game.ErrLobbyNotFound)
		return
	}

	s, err := h.Manager.StartGame(lobbyID, c.PlayerID, now)
	if err != nil {
		h.sendError(c, err)
		return
	}

	log.Printf("Hub.handleStartGame: лобби=%s стало сессией=%s", lobbyID, s.ID)
	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Inc()
	h.broadcastSession(s, now)
}

func (h *Hub) handleSubmitSolution(c *Client, payload json.RawMessage, now time.Time) {
	var p submitSolutionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.sendErrorKind(c, "bad_message", "не удалось разобрать payload")
		return
	}

	guess := game.Guess{Number: p.Number}
	if p.Shape != nil {
		sh := game.Shape(*p.Shape)
		valid := false
		for _, known := range game.Shapes {
			if sh == known {
				valid = true
				break
			}
		}
		if !valid {
			h.sendErrorKind(c, "invalid_guess", "неизвестная форма: "+*p.Shape)
			return
		}
		guess.Shape = &sh
	}

	s, err := h.Manager.SessionForPlayer(c.PlayerID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	res, err := s.SubmitSolution(c.PlayerID, game.Position{Row: p.Row, Col: p.Col}, guess, now)
	if err != nil {
		h.sendError(c, err)
		return
	}

	outcome := "incorrect"
	if res.PointsAwarded > 0 {
		outcome = "correct"
	}
	if res.CellFullySolved {
		outcome = "cell_solved"
	}
	metrics.Guesses.WithLabelValues(outcome).Inc()

	h.send(c.PlayerID, Message{Type: "guess_result", Payload: res})
	if res.GameFinished {
		h.finalizeIfFinished(s, now)
	}
	h.broadcastSession(s, now)
}

func (h *Hub) handleShareClue(c *Client, payload json.RawMessage, now time.Time) {
	var p shareCluePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.ToPlayerID == "" {
		h.sendErrorKind(c, "bad_message", "to_player_id и clue_id обязательны")
		return
	}

	s, err := h.Manager.SessionForPlayer(c.PlayerID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	cl, err := s.ShareClue(c.PlayerID, p.ToPlayerID, p.ClueID)
	if err != nil {
		h.sendError(c, err)
		return
	}

	log.Printf("Hub.handleShareClue: игрок=%s передал подсказку=%d игроку=%s", c.PlayerID, p.ClueID, p.ToPlayerID)
	metrics.CluesShared.Inc()

	h.send(c.PlayerID, Message{Type: "clue_shared", Payload: map[string]any{
		"to_player_id": p.ToPlayerID,
		"clue_id":      p.ClueID,
	}})
	h.send(p.ToPlayerID, Message{Type: "clue_received", Payload: map[string]any{
		"from_player_id": c.PlayerID,
		"clue":           game.ClueView{Clue: *cl, Text: cl.String()},
	}})
	// руки персональные, обоим уходит свежий снапшот
	h.broadcastSession(s, now)
}

func (h *Hub) handleGetState(c *Client, now time.Time) {
	if s, err := h.Manager.SessionForPlayer(c.PlayerID); err == nil {
		h.send(c.PlayerID, Message{Type: "state", Payload: s.Snapshot(c.PlayerID, now)})
		return
	}
	if lobbyID, ok := h.Manager.LobbyForPlayer(c.PlayerID); ok {
		if view, err := h.Manager.LobbyState(lobbyID); err == nil {
			h.send(c.PlayerID, Message{Type: "lobby_state", Payload: view})
			return
		}
	}
	h.sendError(c, game.ErrSessionNotFound)
}

func (h *Hub) handleLeaveSession(c *Client, now time.Time) {
	s := h.Manager.LeaveSession(c.PlayerID, now)
	if s == nil {
		h.sendError(c, game.ErrSessionNotFound)
		return
	}
	log.Printf("Hub.handleLeaveSession: игрок=%s покинул сессию=%s", c.PlayerID, s.ID)
	h.send(c.PlayerID, Message{Type: "session_left", Payload: map[string]any{"session_id": s.ID}})
	h.finalizeIfFinished(s, now)
	h.broadcastSession(s, now)
}

func (h *Hub) handleTerminate(c *Client, now time.Time) {
	s, err := h.Manager.SessionForPlayer(c.PlayerID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := s.Terminate(c.PlayerID, now); err != nil {
		h.sendError(c, err)
		return
	}
	log.Printf("Hub.handleTerminate: хост=%s завершил сессию=%s", c.PlayerID, s.ID)
	h.finalizeIfFinished(s, now)
	h.broadcastSession(s, now)
}

// broadcastSession рассылает каждому игроку сессии его персональный снапшот.
func (h *Hub) broadcastSession(s *game.GameSession, now time.Time) {
	for _, pid := range s.PlayerIDs() {
		h.send(pid, Message{Type: "state", Payload: s.Snapshot(pid, now)})
	}
}

func (h *Hub) broadcastLobby(view *game.LobbyView) {
	for _, p := range view.Players {
		h.send(p.ID, Message{Type: "lobby_state", Payload: view})
	}
}

func (h *Hub) send(playerID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Hub.send: ошибка маршалинга: %v", err)
		return
	}

	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case c.Send <- data:
	case <-time.After(2 * time.Second):
		log.Printf("Hub.send: таймаут отправки игроку=%s type=%s", playerID, msg.Type)
	}
}

func (h *Hub) sendError(c *Client, err error) {
	h.sendErrorKind(c, game.ErrorKind(err), err.Error())
}

func (h *Hub) sendErrorKind(c *Client, kind, message string) {
	h.send(c.PlayerID, Message{Type: "error", Payload: errorPayload{Kind: kind, Message: message}})
}

// finalizeIfFinished один раз на сессию пишет метрики и архивную запись.
// Сессия остается в реестре до sweep, чтобы клиенты забрали финальный снапшот.
func (h *Hub) finalizeIfFinished(s *game.GameSession, now time.Time) {
	if s.State() != game.StateFinished {
		return
	}

	h.mu.Lock()
	if h.archived[s.ID] {
		h.mu.Unlock()
		return
	}
	h.archived[s.ID] = true
	h.mu.Unlock()

	snap := s.Snapshot("", now)
	metrics.ActiveSessions.Dec()
	metrics.SessionsFinished.WithLabelValues(string(snap.FinishReason)).Inc()

	log.Printf("Hub.finalizeIfFinished: сессия=%s причина=%s победитель=%s", s.ID, snap.FinishReason, snap.Winner)

	if h.HistoryRepo == nil {
		return
	}

	startedAt, finishedAt := s.Times()
	rec := &domain.GameRecord{
		SessionID:    s.ID,
		BoardSize:    snap.BoardSize,
		Players:      len(snap.Players),
		FinishReason: string(snap.FinishReason),
		TurnsUsed:    snap.TurnCount,
		CellsSolved:  snap.CellsSolved,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
	}
	for _, p := range snap.Players {
		if p.ID == snap.Winner {
			rec.WinnerID = p.ID
			rec.WinnerName = p.Name
			rec.WinnerScore = p.Score
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.HistoryRepo.Create(ctx, rec); err != nil {
			log.Printf("Hub.finalizeIfFinished: не удалось записать архив сессии=%s: %v", s.ID, err)
		}
	}()
}

// StartCleanup запускает фоновые тикеры: ежесекундную проверку дедлайнов
// сессий и периодический sweep устаревших сущностей.
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()
			for _, s := range h.Manager.Tick(now) {
				h.finalizeIfFinished(s, now)
				h.broadcastSession(s, now)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			sessions, lobbies, evicted := h.Manager.Sweep(time.Now())
			if sessions > 0 || lobbies > 0 || evicted > 0 {
				log.Printf("Hub.StartCleanup: sweep удалил сессий=%d лобби=%d игроков из ожидания=%d", sessions, lobbies, evicted)
			}
			h.pruneArchived()
		}
	}()
}

// pruneArchived выбрасывает отметки об архивации сессий, которых уже нет в реестре.
func (h *Hub) pruneArchived() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.archived {
		if _, err := h.Manager.GetSession(id); err != nil {
			delete(h.archived, id)
		}
	}
}
