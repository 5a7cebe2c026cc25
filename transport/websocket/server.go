package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/lobby"
)

const (
	sessionCookie = "user_session"
	outboxSize    = 32
	writeTimeout  = 5 * time.Second
)

type roomManager interface {
	CreateRoom(ctx context.Context, host *entity.Member, name string, maxPlayers int) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID string, member *entity.Member) (*entity.Room, error)
	LeaveRoom(ctx context.Context, roomID, memberID string) error
	ListRooms(ctx context.Context) ([]*entity.Room, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	StartGame(ctx context.Context, roomID, memberID string) (*entity.Room, error)

	Subscribe(ctx context.Context, roomID, memberID string, outbox chan lobby.Update) error
	Unsubscribe(ctx context.Context, roomID, memberID string, outbox chan lobby.Update) error
	SubmitAction(ctx context.Context, roomID, memberID string, action engine.Action) error
	Chat(ctx context.Context, roomID string, member *entity.Member, text string) error
}

// Limits bound what a single connection may send.
type Limits struct {
	MessagesPerSecond float64
	Burst             int
	ReadTimeout       time.Duration
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
	limits Limits

	handlers map[string]func(ctx context.Context, sess *session, msg *Message) error
}

func New(logger *slog.Logger, rooms roomManager, limits Limits) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,
		limits: limits,

		handlers: make(map[string]func(context.Context, *session, *Message) error),
	}

	server.handlers[ActionPing] = server.handlePing
	server.handlers[ActionRoomCreate] = server.handleCreateRoom
	server.handlers[ActionRoomJoin] = server.handleJoinRoom
	server.handlers[ActionRoomLeave] = server.handleLeaveRoom
	server.handlers[ActionRoomList] = server.handleListRooms
	server.handlers[ActionGameStart] = server.handleStartGame
	server.handlers[ActionGameAction] = server.handleGameAction
	server.handlers[ActionChat] = server.handleChat

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)
	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until the client goes away.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	memberID := that.setSessionCookie(writer, req)

	conn, err := websocket.Accept(writer, req, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	name := req.URL.Query().Get("name")
	if name == "" {
		name = "player-" + memberID[:8]
	}

	limit := rate.Inf
	if that.limits.MessagesPerSecond > 0 {
		limit = rate.Limit(that.limits.MessagesPerSecond)
	}

	sess := &session{
		conn:    conn,
		member:  &entity.Member{ID: memberID, Name: name},
		limiter: rate.NewLimiter(limit, max(that.limits.Burst, 1)),
	}

	log = log.With("member", memberID)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(req.Context(), sess); err != nil {
		log.Info("connection closed", "error", err)
	}

	that.handleDisconnect(sess)
	conn.Close(websocket.StatusNormalClosure, "bye")
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, sess *session) error {
	log := that.logger.With("method", "handleMessages", "member", sess.member.ID)

	for {
		message, err := that.readMessage(ctx, sess)
		if err != nil {
			var protocolErr *protocolError
			if errors.As(err, &protocolErr) {
				that.sendError(ctx, sess, "", protocolErr.err)
				continue
			}
			return err
		}

		if !sess.limiter.Allow() {
			that.sendError(ctx, sess, message.Action, apperror.ErrRateLimited)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(ctx, sess, message.Action, apperror.ErrUnknownMessage)
			continue
		}

		if err = handler(ctx, sess, message); err != nil {
			log.Info("request failed", "action", message.Action, "error", err)
			that.sendError(ctx, sess, message.Action, err)
		}
	}
}

// setSessionCookie - keeps the member id stable across reconnects.
func (that *Server) setSessionCookie(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "setSessionCookie")

	cookie, err := req.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		if _, err = uuid.Parse(cookie.Value); err == nil {
			log.Debug("session cookie found", "cookie", cookie.Value)
			return cookie.Value
		}
	}

	cookie = &http.Cookie{
		Name:     sessionCookie,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/ws",
		HttpOnly: true,
	}
	http.SetCookie(writer, cookie)
	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value
}

// handleDisconnect frees a seat in a waiting room. Seats in a started game are kept for reconnects.
func (that *Server) handleDisconnect(sess *session) {
	log := that.logger.With("method", "handleDisconnect", "member", sess.member.ID)

	roomID, outbox := sess.subscription()
	if roomID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := that.rooms.Unsubscribe(ctx, roomID, sess.member.ID, outbox); err != nil {
		log.Warn("failed to unsubscribe", "room", roomID, "error", err)
	}

	room, err := that.rooms.GetRoom(ctx, roomID)
	if err != nil || !room.IsWaiting() {
		return
	}

	if err = that.rooms.LeaveRoom(ctx, roomID, sess.member.ID); err != nil {
		log.Warn("failed to leave room", "room", roomID, "error", err)
		return
	}

	log.Info("player disconnected", "room", roomID)
}
