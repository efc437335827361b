package game

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestManager(mutate func(*ManagerConfig)) *Manager {
	cfg := DefaultManagerConfig()
	cfg.Session.Seed = 7
	if mutate != nil {
		mutate(&cfg)
	}
	return NewManager(cfg)
}

// создает лобби с n игроками, p1 - хост
func newTestLobby(t *testing.T, m *Manager, n int) *LobbyView {
	t.Helper()
	lv, err := m.CreateLobby("p1", "Игрок 1", 0, testStart)
	if err != nil {
		t.Fatal(err)
	}
	for i := 2; i <= n; i++ {
		lv, err = m.JoinLobby(lv.LobbyID, fmt.Sprintf("p%d", i), fmt.Sprintf("Игрок %d", i), testStart)
		if err != nil {
			t.Fatal(err)
		}
	}
	return lv
}

func TestManagerCreateLobby(t *testing.T) {
	m := newTestManager(nil)

	lv, err := m.CreateLobby("p1", "Игрок 1", 0, testStart)
	if err != nil {
		t.Fatal(err)
	}
	if lv.HostID != "p1" {
		t.Errorf("хост %q", lv.HostID)
	}
	// нулевой размер берется из конфигурации
	if lv.BoardSize != DefaultSessionConfig().BoardSize {
		t.Errorf("BoardSize = %d", lv.BoardSize)
	}
	if lv.CanStart {
		t.Error("одному игроку стартовать нельзя")
	}
	if id, ok := m.LobbyForPlayer("p1"); !ok || id != lv.LobbyID {
		t.Errorf("LobbyForPlayer: %q %v", id, ok)
	}

	if _, err := m.CreateLobby("p2", "x", 99, testStart); !errors.Is(err, ErrBoardSize) {
		t.Errorf("размер вне границ: %v", err)
	}
}

func TestManagerJoinLobby(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 1)

	if _, err := m.JoinLobby("nope", "p2", "x", testStart); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("несуществующее лобби: %v", err)
	}

	lv2, err := m.JoinLobby(lv.LobbyID, "p2", "Игрок 2", testStart)
	if err != nil {
		t.Fatal(err)
	}
	if len(lv2.Players) != 2 || !lv2.CanStart {
		t.Errorf("после второго игрока: %+v", lv2)
	}

	for i := 3; i <= 4; i++ {
		if _, err := m.JoinLobby(lv.LobbyID, fmt.Sprintf("p%d", i), "x", testStart); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.JoinLobby(lv.LobbyID, "p5", "лишний", testStart); !errors.Is(err, ErrLobbyFull) {
		t.Errorf("переполнение: %v", err)
	}

	// повторный вход известного игрока - реконнект, не ошибка
	if _, err := m.JoinLobby(lv.LobbyID, "p2", "Игрок 2", testStart); err != nil {
		t.Errorf("повторный вход: %v", err)
	}
}

func TestManagerLeaveLobby(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 2)

	after, err := m.LeaveLobby(lv.LobbyID, "p1")
	if err != nil {
		t.Fatal(err)
	}
	// хост переизбирается из оставшихся
	if after.HostID != "p2" {
		t.Errorf("хост %q, ожидали p2", after.HostID)
	}
	if _, ok := m.LobbyForPlayer("p1"); ok {
		t.Error("ушедший игрок не должен числиться в лобби")
	}

	// последний уходит - лобби удаляется
	after, err = m.LeaveLobby(lv.LobbyID, "p2")
	if err != nil || after != nil {
		t.Fatalf("опустевшее лобби: %v %v", after, err)
	}
	if _, err := m.LobbyState(lv.LobbyID); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("лобби должно исчезнуть: %v", err)
	}
}

func TestManagerStartGame(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 2)

	if _, err := m.StartGame(lv.LobbyID, "p2", testStart); !errors.Is(err, ErrNotHost) {
		t.Errorf("старт не хостом: %v", err)
	}

	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StatePlaying {
		t.Errorf("состояние %s", s.State())
	}
	if s.Host() != "p1" {
		t.Errorf("хост сессии %q", s.Host())
	}

	// лобби исчезает, игроки переезжают в сессию
	if _, err := m.LobbyState(lv.LobbyID); !errors.Is(err, ErrLobbyNotFound) {
		t.Errorf("лобби должно исчезнуть: %v", err)
	}
	for _, pid := range []string{"p1", "p2"} {
		if _, ok := m.LobbyForPlayer(pid); ok {
			t.Errorf("%s все еще числится в лобби", pid)
		}
		got, err := m.SessionForPlayer(pid)
		if err != nil || got != s {
			t.Errorf("SessionForPlayer(%s): %v %v", pid, got, err)
		}
	}

	if got, err := m.GetSession(s.ID); err != nil || got != s {
		t.Errorf("GetSession: %v %v", got, err)
	}
}

func TestManagerStartGameRequiresQuorum(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 1)

	if _, err := m.StartGame(lv.LobbyID, "p1", testStart); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("старт без кворума: %v", err)
	}
}

func TestManagerLeaveSession(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 3)
	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}

	got := m.LeaveSession("p1", testStart.Add(time.Second))
	if got != s {
		t.Fatal("LeaveSession должен вернуть затронутую сессию")
	}
	if _, err := m.SessionForPlayer("p1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ушедший игрок: %v", err)
	}
	if s.Host() != "p2" {
		t.Errorf("хост %q", s.Host())
	}

	// повторный вызов - no-op
	if m.LeaveSession("p1", testStart) != nil {
		t.Error("повторный LeaveSession должен вернуть nil")
	}
}

func TestManagerDisconnectReconnect(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 3)
	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}
	now := testStart.Add(time.Second)

	if got := m.HandleDisconnect("p2", now); got != s {
		t.Fatal("HandleDisconnect должен вернуть сессию игрока")
	}
	// отключение не выводит из состава
	if _, err := m.SessionForPlayer("p2"); err != nil {
		t.Errorf("отключенный игрок должен числиться в сессии: %v", err)
	}

	if got := m.HandleReconnect("p2", now.Add(time.Second)); got != s {
		t.Fatal("HandleReconnect должен вернуть сессию игрока")
	}

	if m.HandleDisconnect("чужой", now) != nil {
		t.Error("незнакомый игрок: ожидали nil")
	}
}

func TestManagerTick(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 2)
	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}

	if got := m.Tick(testStart.Add(time.Minute)); len(got) != 0 {
		t.Errorf("до дедлайна: %d сессий", len(got))
	}

	deadline := testStart.Add(DefaultSessionConfig().Duration + time.Second)
	got := m.Tick(deadline)
	if len(got) != 1 || got[0] != s {
		t.Fatalf("после дедлайна: %v", got)
	}
	// завершенная сессия второй раз не возвращается
	if got := m.Tick(deadline.Add(time.Second)); len(got) != 0 {
		t.Errorf("повторный Tick: %d сессий", len(got))
	}
}

func TestManagerSweep(t *testing.T) {
	m := newTestManager(nil)

	// завершенная сессия живет грейс-период и убирается после
	lv := newTestLobby(t, m, 2)
	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Terminate("p1", testStart.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	if sr, _, _ := m.Sweep(testStart.Add(2 * time.Minute)); sr != 0 {
		t.Errorf("сессия внутри грейс-периода убрана: %d", sr)
	}
	sr, _, _ := m.Sweep(testStart.Add(time.Minute + DefaultManagerConfig().FinishedGrace + time.Second))
	if sr != 1 {
		t.Errorf("sessionsRemoved = %d", sr)
	}
	if _, err := m.GetSession(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("сессия должна исчезнуть: %v", err)
	}
	if _, err := m.SessionForPlayer("p1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("маппинг игрока должен исчезнуть: %v", err)
	}
}

func TestManagerSweepLobbies(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 2)

	// давно отключенный игрок выбывает из waiting-состава
	m.HandleDisconnect("p2", testStart)
	_, lr, pe := m.Sweep(testStart.Add(DefaultManagerConfig().DisconnectGrace + time.Second))
	if pe != 1 || lr != 0 {
		t.Errorf("playersEvicted = %d, lobbiesRemoved = %d", pe, lr)
	}
	if st, err := m.LobbyState(lv.LobbyID); err != nil || len(st.Players) != 1 {
		t.Errorf("в лобби должен остаться один игрок: %v %v", st, err)
	}

	// протухшее лобби убирается целиком вместе с маппингами
	_, lr, _ = m.Sweep(testStart.Add(DefaultManagerConfig().LobbyTTL + time.Second))
	if lr != 1 {
		t.Errorf("lobbiesRemoved = %d", lr)
	}
	if _, ok := m.LobbyForPlayer("p1"); ok {
		t.Error("маппинг хоста должен исчезнуть")
	}
}

func TestManagerStats(t *testing.T) {
	m := newTestManager(nil)

	newTestLobby(t, m, 1)
	lv2, err := m.CreateLobby("h2", "x", 0, testStart)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.JoinLobby(lv2.LobbyID, "h3", "x", testStart); err != nil {
		t.Fatal(err)
	}
	s, err := m.StartGame(lv2.LobbyID, "h2", testStart)
	if err != nil {
		t.Fatal(err)
	}

	st := m.Stats()
	if st.ActiveLobbies != 1 || st.ActiveSessions != 1 || st.PlayingSessions != 1 || st.FinishedSessions != 0 {
		t.Errorf("Stats = %+v", st)
	}

	if err := s.Terminate("h2", testStart.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	st = m.Stats()
	if st.PlayingSessions != 0 || st.FinishedSessions != 1 {
		t.Errorf("после завершения: %+v", st)
	}
}

func TestNewSessionFromLobbyTransfersRoster(t *testing.T) {
	m := newTestManager(nil)
	lv := newTestLobby(t, m, 3)
	m.HandleDisconnect("p3", testStart)

	s, err := m.StartGame(lv.LobbyID, "p1", testStart)
	if err != nil {
		t.Fatal(err)
	}

	ids := s.PlayerIDs()
	if len(ids) != 3 {
		t.Fatalf("в сессии %d игроков", len(ids))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %s", i, ids[i])
		}
	}
	// статус подключения переносится из лобби
	snap := s.Snapshot("p1", testStart)
	for _, pv := range snap.Players {
		if pv.ID == "p3" && pv.Connected {
			t.Error("p3 должен перенестись отключенным")
		}
	}
}
