package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

// Client actions.
const (
	ActionPing       = "ping"
	ActionRoomCreate = "room:create"
	ActionRoomJoin   = "room:join"
	ActionRoomLeave  = "room:leave"
	ActionRoomList   = "room:list"
	ActionGameStart  = "game:start"
	ActionGameAction = "game:action"
	ActionChat       = "chat"
)

// Server replies. Room and game broadcasts use the lobby update types.
const (
	ActionPong        = "pong"
	ActionRoomCreated = "room:created"
	ActionRoomJoined  = "room:joined"
	ActionRoomLeft    = "room:left"
	ActionError       = "error"
)

type createRoomPayload struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type roomPayload struct {
	RoomID string `json:"room_id"`
}

type actionPayload struct {
	Action *engine.ActionJSON `json:"action"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type joinedPayload struct {
	Member *entity.Member `json:"member"`
	Room   *entity.Room   `json:"room"`
}

const maxChatLength = 500

func (that *Server) handlePing(ctx context.Context, sess *session, _ *Message) error {
	return that.sendMessage(ctx, sess, ActionPong, nil)
}

func (that *Server) handleCreateRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "member", sess.member.ID)

	var payload createRoomPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}

	room, err := that.rooms.CreateRoom(ctx, sess.member, payload.Name, payload.MaxPlayers)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if err = that.subscribe(ctx, sess, room.ID); err != nil {
		return err
	}

	log.Info("room created", "room", room.ID)
	return that.sendMessage(ctx, sess, ActionRoomCreated, joinedPayload{Member: sess.member, Room: room})
}

// handleJoinRoom also serves reconnects: rejoining a room you sit in only resubscribes.
func (that *Server) handleJoinRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "member", sess.member.ID)

	var payload roomPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}
	if payload.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", apperror.ErrBadPayload)
	}

	room, err := that.rooms.JoinRoom(ctx, payload.RoomID, sess.member)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if err = that.subscribe(ctx, sess, room.ID); err != nil {
		return err
	}

	log.Info("joined room", "room", room.ID)
	return that.sendMessage(ctx, sess, ActionRoomJoined, joinedPayload{Member: sess.member, Room: room})
}

func (that *Server) handleLeaveRoom(ctx context.Context, sess *session, _ *Message) error {
	roomID, outbox := sess.subscription()
	if roomID == "" {
		return apperror.ErrNotConnected
	}

	if err := that.rooms.Unsubscribe(ctx, roomID, sess.member.ID, outbox); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	sess.setRoom("", nil)

	if err := that.rooms.LeaveRoom(ctx, roomID, sess.member.ID); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return that.sendMessage(ctx, sess, ActionRoomLeft, roomPayload{RoomID: roomID})
}

func (that *Server) handleListRooms(ctx context.Context, sess *session, _ *Message) error {
	rooms, err := that.rooms.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	return that.sendMessage(ctx, sess, ActionRoomList, rooms)
}

func (that *Server) handleStartGame(ctx context.Context, sess *session, _ *Message) error {
	roomID := sess.room()
	if roomID == "" {
		return apperror.ErrNotConnected
	}

	if _, err := that.rooms.StartGame(ctx, roomID, sess.member.ID); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	return nil
}

// handleGameAction hands the action to the room. The outcome arrives through the room's updates.
func (that *Server) handleGameAction(ctx context.Context, sess *session, msg *Message) error {
	roomID := sess.room()
	if roomID == "" {
		return apperror.ErrNotConnected
	}

	var payload actionPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}
	if payload.Action == nil || payload.Action.Action == nil {
		return fmt.Errorf("%w: action is required", apperror.ErrBadPayload)
	}

	return that.rooms.SubmitAction(ctx, roomID, sess.member.ID, payload.Action.Action)
}

func (that *Server) handleChat(ctx context.Context, sess *session, msg *Message) error {
	roomID := sess.room()
	if roomID == "" {
		return apperror.ErrNotConnected
	}

	var payload chatPayload
	if err := decodePayload(msg, &payload); err != nil {
		return err
	}
	if payload.Text == "" || len(payload.Text) > maxChatLength {
		return fmt.Errorf("%w: chat text must be 1..%d bytes", apperror.ErrBadPayload, maxChatLength)
	}

	return that.rooms.Chat(ctx, roomID, sess.member, payload.Text)
}
