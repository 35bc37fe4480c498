package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/bingo-backend/internal/usecase"
)

// dispatch - routes one inbound message to the session operation it names.
// Every failure is reported back to the offending connection only.
func (that *Server) dispatch(ctx context.Context, playerID string, raw []byte) error {
	var message inboundMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		that.sendError(playerID, "Invalid JSON")
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	switch message.Type {
	case typeCreateGame:
		return that.handleCreateGame(ctx, playerID, &message)
	case typeJoinGame:
		return that.handleJoinGame(ctx, playerID, &message)
	case typeCallNumber:
		return that.handleCallNumber(ctx, playerID, &message)
	case typeBingo:
		return that.handleBingo(ctx, playerID, &message)
	default:
		that.sendError(playerID, "Unknown message type")
		return nil
	}
}

func (that *Server) handleCreateGame(ctx context.Context, playerID string, message *inboundMessage) error {
	log := that.logger.With("method", "handleCreateGame", "playerID", playerID)

	gameID, err := that.engine.CreateGame(ctx, playerID, message.PlayerName)
	if err != nil {
		that.sendError(playerID, err.Error())
		return nil
	}

	that.sendTo(playerID, gameCreatedMessage{Type: typeGameCreated, GameID: gameID})

	log.Info("game created", "gameID", gameID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, playerID string, message *inboundMessage) error {
	log := that.logger.With("method", "handleJoinGame", "playerID", playerID)

	if message.GameID == "" {
		that.sendError(playerID, "gameId is required")
		return nil
	}

	views, err := that.engine.JoinGame(ctx, message.GameID, playerID, message.PlayerName)
	if err != nil {
		that.sendError(playerID, err.Error())
		return nil
	}

	for _, view := range views {
		that.sendTo(view.PlayerID, gameStartedMessage{
			Type:          typeGameStarted,
			GameID:        view.GameID,
			FirstPlayerID: view.FirstPlayerID,
			Card:          view.Card,
			OpponentName:  view.OpponentName,
		})
	}

	log.Info("game started", "gameID", message.GameID)

	return nil
}

func (that *Server) handleCallNumber(ctx context.Context, playerID string, message *inboundMessage) error {
	log := that.logger.With("method", "handleCallNumber", "playerID", playerID)

	if message.Number == nil {
		that.sendError(playerID, "number is required")
		return nil
	}

	outcome, err := that.engine.CallNumber(ctx, message.GameID, playerID, *message.Number)
	if err != nil {
		that.sendError(playerID, err.Error())
		return nil
	}

	if outcome.Winner != nil {
		that.broadcastGameOver(outcome)
		log.Info("game won", "gameID", outcome.GameID, "winnerID", outcome.Winner.ID)
		return nil
	}

	for _, view := range outcome.Views {
		that.sendTo(view.PlayerID, numberCalledMessage{
			Type:          typeNumberCalled,
			Number:        outcome.Number,
			CalledNumbers: outcome.CalledNumbers,
			NextPlayerID:  outcome.NextPlayerID,
			MyLines:       view.MyLines,
			OpponentLines: view.OpponentLines,
		})
	}

	log.Info("number called", "gameID", outcome.GameID, "number", outcome.Number)

	return nil
}

func (that *Server) handleBingo(ctx context.Context, playerID string, message *inboundMessage) error {
	log := that.logger.With("method", "handleBingo", "playerID", playerID)

	outcome, err := that.engine.ClaimBingo(ctx, message.GameID, playerID)
	if err != nil {
		that.sendError(playerID, err.Error())
		return nil
	}

	that.broadcastGameOver(outcome)

	log.Info("bingo confirmed", "gameID", outcome.GameID, "winnerID", outcome.Winner.ID)

	return nil
}

func (that *Server) broadcastGameOver(outcome *usecase.TurnOutcome) {
	for _, view := range outcome.Views {
		that.sendTo(view.PlayerID, gameOverMessage{
			Type:          typeGameOver,
			WinnerID:      outcome.Winner.ID,
			WinnerName:    outcome.Winner.Name,
			CalledNumbers: outcome.CalledNumbers,
		})
	}
}
