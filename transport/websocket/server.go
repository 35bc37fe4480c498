package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/bingo-backend/internal/usecase"
)

const opponentLeftNotice = "Opponent disconnected."

type gameEngine interface {
	CreateGame(ctx context.Context, playerID, playerName string) (string, error)
	JoinGame(ctx context.Context, gameID, playerID, playerName string) ([]usecase.StartView, error)
	CallNumber(ctx context.Context, gameID, playerID string, number int) (*usecase.TurnOutcome, error)
	ClaimBingo(ctx context.Context, gameID, playerID string) (*usecase.TurnOutcome, error)
	Disconnect(ctx context.Context, playerID string) (*usecase.DisconnectOutcome, error)
}

// connection - one player's websocket. gorilla allows a single concurrent
// writer, so every send goes through the connection's own mutex.
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (that *connection) send(message any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.ws.WriteJSON(message)
}

type Server struct {
	logger *slog.Logger
	engine gameEngine

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection
}

func New(logger *slog.Logger, engine gameEngine) *Server {
	return &Server{
		logger: logger,
		engine: engine,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		connections: make(map[string]*connection),
	}
}

// Start - starts the WebSocket server and blocks until the context is
// canceled or the listener fails.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection - owns one physical connection: assigns its opaque player
// identity, pumps inbound messages to the dispatcher, and turns the close
// event into an engine disconnect.
func (that *Server) handleConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleConnection")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := uuid.NewString()
	conn := &connection{ws: ws}

	that.connectionsMutex.Lock()
	that.connections[playerID] = conn
	that.connectionsMutex.Unlock()

	log = log.With("playerID", playerID)
	log.Info("client connected")

	if err = conn.send(playerConnectedMessage{Type: typePlayerConnected, PlayerID: playerID}); err != nil {
		log.Error("failed to send connect message", "error", err)
	}

	defer func() {
		that.closeConnection(ctx, playerID, conn)
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		if err = that.dispatch(ctx, playerID, raw); err != nil {
			log.Error("failed to process message", "error", err)
		}
	}
}

// closeConnection - unregisters the connection and tears down the player's
// game, delivering the opponent-left notice if a player remains.
func (that *Server) closeConnection(ctx context.Context, playerID string, conn *connection) {
	log := that.logger.With("method", "closeConnection", "playerID", playerID)

	that.connectionsMutex.Lock()
	delete(that.connections, playerID)
	that.connectionsMutex.Unlock()

	_ = conn.ws.Close()

	outcome, err := that.engine.Disconnect(ctx, playerID)
	if err != nil {
		log.Error("failed to disconnect player", "error", err)
		return
	}

	if outcome != nil {
		that.sendTo(outcome.RemainingPlayerID, gameOverMessage{
			Type:    typeGameOver,
			Message: opponentLeftNotice,
		})
	}

	log.Info("client disconnected")
}

// sendTo - delivers a message to a player's connection if it is still open.
func (that *Server) sendTo(playerID string, message any) {
	that.connectionsMutex.RLock()
	conn, ok := that.connections[playerID]
	that.connectionsMutex.RUnlock()

	if !ok {
		that.logger.Warn("connection not found for player", "playerID", playerID)
		return
	}

	if err := conn.send(message); err != nil {
		that.logger.Error("failed to send message", "playerID", playerID, "error", err)
	}
}

func (that *Server) sendError(playerID, message string) {
	that.sendTo(playerID, errorMessage{Type: typeError, Message: message})
}
