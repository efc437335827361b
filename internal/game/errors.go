package game

import "errors"

// Ошибки валидации. Возвращаются только вызывающему, никогда не рассылаются
// остальным участникам и не меняют состояние сессии.
var (
	ErrGameNotPlaying     = errors.New("игра не в состоянии playing")
	ErrSessionFinished    = errors.New("сессия уже завершена")
	ErrNotYourTurn        = errors.New("сейчас не ваш ход")
	ErrInvalidPosition    = errors.New("позиция вне поля")
	ErrAttributeRevealed  = errors.New("атрибут ячейки уже раскрыт")
	ErrEmptyGuess         = errors.New("догадка не содержит ни одного атрибута")
	ErrInvalidShare       = errors.New("недопустимая передача подсказки")
	ErrPlayerNotInSession = errors.New("игрок не в этой сессии")
	ErrSessionNotFound    = errors.New("сессия не найдена")
	ErrLobbyNotFound      = errors.New("лобби не найдено")
	ErrLobbyFull          = errors.New("лобби заполнено")
	ErrRosterFull         = errors.New("состав сессии заполнен")
	ErrNotHost            = errors.New("действие доступно только хосту")
	ErrNotEnoughPlayers   = errors.New("недостаточно игроков для старта")
	ErrAlreadyStarted     = errors.New("игра уже началась")
)

// ErrorKind возвращает машинно-читаемый код ошибки для клиента.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrGameNotPlaying):
		return "game_not_playing"
	case errors.Is(err, ErrSessionFinished):
		return "session_finished"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid_position"
	case errors.Is(err, ErrAttributeRevealed):
		return "attribute_already_revealed"
	case errors.Is(err, ErrEmptyGuess):
		return "empty_guess"
	case errors.Is(err, ErrInvalidShare):
		return "invalid_share"
	case errors.Is(err, ErrPlayerNotInSession):
		return "player_not_in_session"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrLobbyNotFound):
		return "lobby_not_found"
	case errors.Is(err, ErrLobbyFull):
		return "lobby_full"
	case errors.Is(err, ErrRosterFull):
		return "roster_full"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, ErrGeneration):
		return "generation_failed"
	case errors.Is(err, ErrBoardSize):
		return "invalid_board_size"
	default:
		return "internal"
	}
}
