package ws

import "encoding/json"

// Message - исходящий конверт.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Envelope - входящий конверт; payload разбирается по типу операции.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createLobbyPayload struct {
	BoardSize int `json:"board_size"`
}

type joinLobbyPayload struct {
	LobbyID string `json:"lobby_id"`
}

type submitSolutionPayload struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	Shape  *string `json:"shape,omitempty"`
	Number *int    `json:"number,omitempty"`
}

type shareCluePayload struct {
	ToPlayerID string `json:"to_player_id"`
	ClueID     int    `json:"clue_id"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
