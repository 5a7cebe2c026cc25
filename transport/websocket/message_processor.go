package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/time/rate"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/lobby"
)

// Message is what a client sends: an action name and its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is what the server pushes, either as a direct reply or forwarded from a room's lobby.
type Response struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// protocolError is a bad frame that does not end the connection.
type protocolError struct {
	err error
}

func (that *protocolError) Error() string {
	return that.err.Error()
}

func (that *protocolError) Unwrap() error {
	return that.err
}

// session is one connection. The read loop is its only mutator apart from roomID and outbox,
// which the disconnect path also reads.
type session struct {
	conn    *websocket.Conn
	member  *entity.Member
	limiter *rate.Limiter

	mu     sync.Mutex
	roomID string
	outbox chan lobby.Update
}

func (that *session) room() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.roomID
}

// subscription returns the room and the outbox this connection registered there.
func (that *session) subscription() (string, chan lobby.Update) {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.roomID, that.outbox
}

func (that *session) setRoom(roomID string, outbox chan lobby.Update) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.roomID = roomID
	that.outbox = outbox
}

func (that *Server) readMessage(ctx context.Context, sess *session) (*Message, error) {
	readCtx := ctx
	if that.limits.ReadTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, that.limits.ReadTimeout)
		defer cancel()
	}

	typ, data, err := sess.conn.Read(readCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	if typ != websocket.MessageText {
		return nil, &protocolError{err: fmt.Errorf("%w: binary frame", apperror.ErrBadPayload)}
	}

	var message Message
	if err = json.Unmarshal(data, &message); err != nil {
		return nil, &protocolError{err: fmt.Errorf("%w: %w", apperror.ErrBadPayload, err)}
	}

	return &message, nil
}

func (that *Server) sendMessage(ctx context.Context, sess *session, action string, payload any) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := wsjson.Write(writeCtx, sess.conn, Response{Action: action, Payload: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(ctx context.Context, sess *session, request string, err error) {
	payload := ErrorPayload{
		Request: request,
		Reason:  apperror.Reason(err),
		Message: err.Error(),
	}

	if sendErr := that.sendMessage(ctx, sess, ActionError, payload); sendErr != nil {
		that.logger.Warn("failed to send error response", "method", "sendError", "error", sendErr)
	}
}

// subscribe moves the session into roomID and starts forwarding the room's updates.
func (that *Server) subscribe(ctx context.Context, sess *session, roomID string) error {
	if current, prev := sess.subscription(); current != "" && current != roomID {
		if err := that.rooms.Unsubscribe(ctx, current, sess.member.ID, prev); err != nil {
			return fmt.Errorf("failed to unsubscribe: %w", err)
		}
	}

	outbox := make(chan lobby.Update, outboxSize)
	if err := that.rooms.Subscribe(ctx, roomID, sess.member.ID, outbox); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	sess.setRoom(roomID, outbox)

	go that.forward(ctx, sess, outbox)
	return nil
}

// forward copies lobby updates to the connection until the lobby closes the outbox.
func (that *Server) forward(ctx context.Context, sess *session, outbox <-chan lobby.Update) {
	log := that.logger.With("method", "forward", "member", sess.member.ID)

	for update := range outbox {
		if err := that.sendMessage(ctx, sess, update.Type, update.Payload); err != nil {
			log.Debug("failed to forward update", "type", update.Type, "error", err)
		}
	}
}

func decodePayload(msg *Message, into any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, into); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrBadPayload, err)
	}
	return nil
}
