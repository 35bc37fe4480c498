package websocket

import "github.com/rocketscienceinc/bingo-backend/internal/entity"

// Inbound and outbound message shapes. Every message is a flat JSON object
// discriminated by "type".
const (
	typeCreateGame = "createGame"
	typeJoinGame   = "joinGame"
	typeCallNumber = "callNumber"
	typeBingo      = "bingo"

	typePlayerConnected = "playerConnected"
	typeGameCreated     = "gameCreated"
	typeGameStarted     = "gameStarted"
	typeNumberCalled    = "numberCalled"
	typeGameOver        = "gameOver"
	typeError           = "error"
)

type inboundMessage struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Number     *int   `json:"number,omitempty"`
}

type playerConnectedMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type gameCreatedMessage struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

type gameStartedMessage struct {
	Type          string      `json:"type"`
	GameID        string      `json:"gameId"`
	FirstPlayerID string      `json:"firstPlayerId"`
	Card          entity.Card `json:"card"`
	OpponentName  string      `json:"opponentName"`
}

type numberCalledMessage struct {
	Type          string `json:"type"`
	Number        int    `json:"number"`
	CalledNumbers []int  `json:"calledNumbers"`
	NextPlayerID  string `json:"nextPlayerId"`
	MyLines       int    `json:"myLines"`
	OpponentLines int    `json:"opponentLines"`
}

type gameOverMessage struct {
	Type          string `json:"type"`
	WinnerID      string `json:"winnerId,omitempty"`
	WinnerName    string `json:"winnerName,omitempty"`
	CalledNumbers []int  `json:"calledNumbers,omitempty"`
	Message       string `json:"message,omitempty"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
