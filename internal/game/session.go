package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	StateWaiting  SessionState = "waiting"
	StatePlaying  SessionState = "playing"
	StateFinished SessionState = "finished"
)

type FinishReason string

const (
	FinishAllSolved           FinishReason = "all_solved"
	FinishTimeExpired         FinishReason = "time_expired"
	FinishTurnsExhausted      FinishReason = "turns_exhausted"
	FinishInsufficientPlayers FinishReason = "insufficient_players"
	FinishHostTerminated      FinishReason = "host_terminated"
)

// Настройки одной сессии. Величины наград - игровой параметр, не инвариант,
// поэтому задаются здесь, а не константами.
type SessionConfig struct {
	BoardSize  int
	MinPlayers int
	MaxPlayers int
	Duration   time.Duration
	// общий пул ходов на всех, 0 = без лимита
	MaxTurns int

	RewardAttribute int // очки за каждый новый раскрытый атрибут
	RewardCellBonus int // бонус за нетронутую ячейку, закрытую одним ходом
	GuessPenalty    int // штраф за ход с неверным атрибутом, счет не уходит ниже нуля

	Partition PartitionPolicy
	Generator GeneratorConfig
	Seed      int64 // 0 = время
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		BoardSize:       4,
		MinPlayers:      2,
		MaxPlayers:      4,
		Duration:        15 * time.Minute,
		MaxTurns:        50,
		RewardAttribute: 10,
		RewardCellBonus: 5,
		GuessPenalty:    5,
		Partition:       PartitionRoundRobin,
		Generator:       DefaultGeneratorConfig(),
	}
}

// Раскрытое состояние одной ячейки. Никогда не откатывается.
type SolvedCell struct {
	ShapeRevealed  bool
	NumberRevealed bool
	Solution       Cell
	SolvedBy       string
	SolvedAt       time.Time
}

func (sc *SolvedCell) fullyRevealed() bool {
	return sc.ShapeRevealed && sc.NumberRevealed
}

// Частичная или полная догадка об одной ячейке.
type Guess struct {
	Shape  *Shape `json:"shape,omitempty"`
	Number *int   `json:"number,omitempty"`
}

// Итог обработки догадки.
type GuessResult struct {
	Accepted        bool  `json:"accepted"`
	PointsAwarded   int   `json:"points_awarded"`
	PenaltyApplied  int   `json:"penalty_applied"`
	CellFullySolved bool  `json:"cell_fully_solved"`
	ShapeCorrect    *bool `json:"shape_correct,omitempty"`
	NumberCorrect   *bool `json:"number_correct,omitempty"`
	GameFinished    bool  `json:"game_finished"`
}

// GameSession - машина состояний одного пазла: waiting -> playing -> finished.
// Каждая мутирующая операция выполняется под одним мьютексом; поле и пул
// подсказок после генерации только читаются. Операции не блокируются на I/O:
// доставка результатов - забота транспортного слоя.
type GameSession struct {
	ID  string
	cfg SessionConfig

	mu      sync.Mutex
	board   *Board
	clues   []Clue
	solved  map[Position]*SolvedCell
	players []*Player // порядок задает ротацию ходов
	hostID  string

	state        SessionState
	currentTurn  int
	turnCount    int
	createdAt    time.Time
	startedAt    time.Time
	endsAt       time.Time
	finishedAt   time.Time
	finishReason FinishReason
	winnerID     string

	rng *rand.Rand
}

// NewSession генерирует поле и пул подсказок сразу при создании: сессия с
// нерешаемым полем не должна существовать, ошибка уходит создателю.
func NewSession(cfg SessionConfig, now time.Time) (*GameSession, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	board, clues, err := GeneratePuzzle(cfg.BoardSize, seed, cfg.Generator)
	if err != nil {
		return nil, err
	}
	return &GameSession{
		ID:        uuid.NewString(),
		cfg:       cfg,
		board:     board,
		clues:     clues,
		solved:    make(map[Position]*SolvedCell),
		state:     StateWaiting,
		createdAt: now,
		rng:       rand.New(rand.NewSource(seed + 1)),
	}, nil
}

// Join добавляет игрока в waiting либо восстанавливает известного игрока
// в playing (реконнект пересоздает соединение, но не состояние игрока).
func (s *GameSession) Join(playerID, name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.findLocked(playerID); p != nil {
		p.Connected = true
		p.DisconnectedAt = time.Time{}
		return nil
	}

	switch s.state {
	case StateFinished:
		return ErrSessionFinished
	case StatePlaying:
		return ErrGameNotPlaying
	}
	if len(s.players) >= s.cfg.MaxPlayers {
		return ErrRosterFull
	}

	p := newPlayer(playerID, name, now)
	s.players = append(s.players, p)
	if s.hostID == "" {
		s.hostID = playerID
	}
	return nil
}

// Start переводит сессию в playing: раздает подсказки и открывает таймер.
// Запускать может только хост при достаточном числе подключенных игроков.
func (s *GameSession) Start(playerID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return ErrSessionFinished
	}
	if s.state != StateWaiting {
		return ErrAlreadyStarted
	}
	if playerID != "" && playerID != s.hostID {
		return ErrNotHost
	}
	if s.connectedLocked() < s.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	hands := PartitionClues(s.clues, len(s.players), s.cfg.Partition, s.rng)
	for i, p := range s.players {
		for _, id := range hands[i] {
			p.grantClue(id)
		}
	}

	s.state = StatePlaying
	s.startedAt = now
	s.endsAt = now.Add(s.cfg.Duration)
	s.currentTurn = 0
	s.ensureTurnConnectedLocked()
	return nil
}

// SubmitSolution валидирует догадку текущего игрока против истинного поля.
// Каждая отправка, верная или нет, расходует ход.
func (s *GameSession) SubmitSolution(playerID string, pos Position, guess Guess, now time.Time) (*GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return nil, ErrSessionFinished
	}
	if s.state != StatePlaying {
		return nil, ErrGameNotPlaying
	}
	p := s.findLocked(playerID)
	if p == nil {
		return nil, ErrPlayerNotInSession
	}
	if s.players[s.currentTurn].ID != playerID {
		return nil, ErrNotYourTurn
	}
	if !s.board.InBounds(pos) {
		return nil, ErrInvalidPosition
	}
	if guess.Shape == nil && guess.Number == nil {
		return nil, ErrEmptyGuess
	}

	sc := s.solved[pos]
	if sc != nil {
		if guess.Shape != nil && sc.ShapeRevealed {
			return nil, ErrAttributeRevealed
		}
		if guess.Number != nil && sc.NumberRevealed {
			return nil, ErrAttributeRevealed
		}
	}

	truth := s.board.At(pos)
	res := &GuessResult{}
	untouched := sc == nil

	correct := 0
	wrong := false
	if guess.Shape != nil {
		ok := *guess.Shape == truth.Shape
		res.ShapeCorrect = &ok
		if ok {
			correct++
		} else {
			wrong = true
		}
	}
	if guess.Number != nil {
		ok := *guess.Number == truth.Number
		res.NumberCorrect = &ok
		if ok {
			correct++
		} else {
			wrong = true
		}
	}

	if correct > 0 {
		if sc == nil {
			sc = &SolvedCell{Solution: truth}
			s.solved[pos] = sc
		}
		if guess.Shape != nil && res.ShapeCorrect != nil && *res.ShapeCorrect {
			sc.ShapeRevealed = true
		}
		if guess.Number != nil && res.NumberCorrect != nil && *res.NumberCorrect {
			sc.NumberRevealed = true
		}
		sc.SolvedBy = playerID
		sc.SolvedAt = now

		res.Accepted = true
		res.PointsAwarded = correct * s.cfg.RewardAttribute
		// нетронутая ячейка, закрытая целиком одним ходом, ценится выше
		if untouched && sc.fullyRevealed() {
			res.PointsAwarded += s.cfg.RewardCellBonus
		}
		res.CellFullySolved = sc.fullyRevealed()
		p.Score += res.PointsAwarded
		p.LastCorrectAt = now
	}

	if wrong {
		res.PenaltyApplied = s.cfg.GuessPenalty
		p.IncorrectGuesses++
		p.Score -= res.PenaltyApplied
		if p.Score < 0 {
			p.Score = 0 // счет не уходит в минус
		}
	}

	p.TurnsTaken++
	s.advanceTurnLocked()

	if s.allSolvedLocked() {
		s.finishLocked(FinishAllSolved, now)
	} else if s.cfg.MaxTurns > 0 && s.turnCount >= s.cfg.MaxTurns {
		s.finishLocked(FinishTurnsExhausted, now)
	}
	res.GameFinished = s.state == StateFinished

	return res, nil
}

// ShareClue копирует подсказку из руки отправителя в руку получателя.
// Рука отправителя не меняется, ход не расходуется.
func (s *GameSession) ShareClue(fromID, toID string, clueID int) (*Clue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return nil, ErrSessionFinished
	}
	if s.state != StatePlaying {
		return nil, ErrGameNotPlaying
	}
	from := s.findLocked(fromID)
	to := s.findLocked(toID)
	if from == nil || to == nil || fromID == toID {
		return nil, ErrInvalidShare
	}
	if clueID < 0 || clueID >= len(s.clues) || !from.holdsClue(clueID) {
		return nil, ErrInvalidShare
	}

	to.grantClue(clueID) // повторная передача идемпотентна
	cl := s.clues[clueID]
	return &cl, nil
}

// HandleDisconnect помечает игрока отключенным. Идемпотентна. Если ход был
// его - ход пропускается немедленно; пропуск проверяется и при каждом
// последующем продвижении хода, т.к. отключиться можно и вне своего хода.
func (s *GameSession) HandleDisconnect(playerID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.DisconnectedAt = now

	if s.state != StatePlaying {
		return
	}

	if s.players[s.currentTurn].ID == playerID {
		// автопропуск: ход расходуется, догадка не записывается
		s.advanceTurnLocked()
		if s.cfg.MaxTurns > 0 && s.turnCount >= s.cfg.MaxTurns {
			s.finishLocked(FinishTurnsExhausted, now)
			return
		}
	}

	if s.connectedLocked() < s.cfg.MinPlayers {
		s.finishLocked(FinishInsufficientPlayers, now)
	}
}

// HandleReconnect восстанавливает право на будущие ходы.
// Пропущенные ходы не возвращаются.
func (s *GameSession) HandleReconnect(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findLocked(playerID)
	if p == nil {
		return false
	}
	p.Connected = true
	p.DisconnectedAt = time.Time{}
	return true
}

// Leave удаляет игрока из состава. Повторный вызов - no-op.
func (s *GameSession) Leave(playerID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasTurn := s.state == StatePlaying && s.currentTurn == idx
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	if len(s.players) == 0 {
		if s.state != StateFinished {
			s.finishLocked(FinishInsufficientPlayers, now)
		}
		s.currentTurn = 0
		return
	}

	// переизбрание хоста, как в лобби
	if s.hostID == playerID {
		s.hostID = s.players[0].ID
	}
	if s.currentTurn > idx {
		s.currentTurn--
	}
	if s.currentTurn >= len(s.players) {
		s.currentTurn = 0
	}
	if wasTurn {
		// ход переходит дальше без расхода общего пула
		s.ensureTurnConnectedLocked()
	}

	if s.state == StatePlaying && s.connectedLocked() < s.cfg.MinPlayers {
		s.finishLocked(FinishInsufficientPlayers, now)
	}
}

// Tick вызывается внешним планировщиком примерно раз в секунду.
// Возвращает true, если именно этот вызов завершил сессию по времени.
func (s *GameSession) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || now.Before(s.endsAt) {
		return false
	}
	s.finishLocked(FinishTimeExpired, now)
	return true
}

// Terminate - административное завершение. Пустой playerID означает
// служебный вызов (sweep, остановка процесса), иначе требуется хост.
func (s *GameSession) Terminate(playerID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return nil
	}
	if playerID != "" && playerID != s.hostID {
		return ErrNotHost
	}
	s.finishLocked(FinishHostTerminated, now)
	return nil
}

func (s *GameSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *GameSession) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostID
}

// Times возвращает моменты старта и завершения (нулевые до соответствующих
// переходов состояния).
func (s *GameSession) Times() (startedAt, finishedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt, s.finishedAt
}

// PlayerIDs возвращает текущий состав в порядке ротации.
func (s *GameSession) PlayerIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.players))
	for i, p := range s.players {
		out[i] = p.ID
	}
	return out
}

func (s *GameSession) findLocked(playerID string) *Player {
	for _, p := range s.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *GameSession) connectedLocked() int {
	n := 0
	for _, p := range s.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// advanceTurnLocked расходует ход и передает его следующему подключенному.
func (s *GameSession) advanceTurnLocked() {
	s.turnCount++
	n := len(s.players)
	for i := 1; i <= n; i++ {
		idx := (s.currentTurn + i) % n
		if s.players[idx].Connected {
			s.currentTurn = idx
			return
		}
	}
}

// ensureTurnConnectedLocked сдвигает указатель хода на подключенного игрока,
// не расходуя ход.
func (s *GameSession) ensureTurnConnectedLocked() {
	n := len(s.players)
	for i := 0; i < n; i++ {
		idx := (s.currentTurn + i) % n
		if s.players[idx].Connected {
			s.currentTurn = idx
			return
		}
	}
}

func (s *GameSession) allSolvedLocked() bool {
	if len(s.solved) < s.board.Size*s.board.Size {
		return false
	}
	for _, sc := range s.solved {
		if !sc.fullyRevealed() {
			return false
		}
	}
	return true
}

func (s *GameSession) finishLocked(reason FinishReason, now time.Time) {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	s.finishReason = reason
	s.finishedAt = now
	s.winnerID = s.computeWinnerLocked()
}

// Победитель: наибольший счет; при равенстве - меньше неверных догадок;
// затем более раннее последнее верное раскрытие; затем порядок состава.
func (s *GameSession) computeWinnerLocked() string {
	var best *Player
	for _, p := range s.players {
		if best == nil {
			best = p
			continue
		}
		if p.Score != best.Score {
			if p.Score > best.Score {
				best = p
			}
			continue
		}
		if p.IncorrectGuesses != best.IncorrectGuesses {
			if p.IncorrectGuesses < best.IncorrectGuesses {
				best = p
			}
			continue
		}
		if !p.LastCorrectAt.IsZero() &&
			(best.LastCorrectAt.IsZero() || p.LastCorrectAt.Before(best.LastCorrectAt)) {
			best = p
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}
