package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/autoplay"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/snapshot"
)

var ErrClosed = errors.New("lobby is closed")

const inboxSize = 64

type gameStore interface {
	CreateOrUpdate(ctx context.Context, id string, game *engine.Game) error
}

type archiveStore interface {
	Save(ctx context.Context, game *entity.ArchivedGame) error
}

// Lobby is the single writer of one room: every submission for its game goes through the inbox and
// is applied in arrival order by one goroutine.
type Lobby struct {
	logger *slog.Logger

	roomID   string
	roomName string

	inbox   chan Msg
	clients map[string]chan Update

	members []*entity.Member
	game    *engine.Game
	version int

	games    gameStore
	archive  archiveStore
	onFinish func(roomID string)

	turnTimeout time.Duration
	timer       *time.Timer
	stand       autoplay.Player

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Lobby)

// WithTurnTimeout makes the lobby act for a player who stalls longer than d. Zero disables it.
func WithTurnTimeout(d time.Duration) Option {
	return func(l *Lobby) {
		l.turnTimeout = d
	}
}

// WithAutoplay sets who acts once the turn clock runs out.
func WithAutoplay(player autoplay.Player) Option {
	return func(l *Lobby) {
		l.stand = player
	}
}

// WithFinishHook is called from the lobby goroutine once the game has been won and archived.
func WithFinishHook(fn func(roomID string)) Option {
	return func(l *Lobby) {
		l.onFinish = fn
	}
}

func New(parent context.Context, logger *slog.Logger, room *entity.Room, games gameStore, archive archiveStore, opts ...Option) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		logger:   logger.With("component", "lobby", "room", room.ID),
		roomID:   room.ID,
		roomName: room.Name,
		inbox:    make(chan Msg, inboxSize),
		clients:  make(map[string]chan Update),
		games:    games,
		archive:  archive,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}
	if l.stand == nil {
		l.stand = autoplay.NewRandom(nil)
	}

	go l.loop()
	return l
}

// Send queues msg for the lobby goroutine.
func (that *Lobby) Send(ctx context.Context, msg Msg) error {
	select {
	case <-that.done:
		return ErrClosed
	default:
	}

	select {
	case that.inbox <- msg:
		return nil
	case <-that.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the lobby and waits for its goroutine; every subscriber channel gets closed.
func (that *Lobby) Close() {
	that.cancel()
	<-that.done
}

func (that *Lobby) loop() {
	defer close(that.done)

	for {
		select {
		case <-that.ctx.Done():
			that.shutdown()
			return

		case m := <-that.inbox:
			that.handle(m)
		}
	}
}

func (that *Lobby) handle(m Msg) {
	switch msg := m.(type) {
	case Subscribe:
		if prev, ok := that.clients[msg.MemberID]; ok && prev != msg.Outbox {
			close(prev)
		}
		that.clients[msg.MemberID] = msg.Outbox
		if that.game != nil {
			that.deliver(msg.MemberID, that.stateUpdate(msg.MemberID, that.encodeView(that.viewerOf(msg.MemberID))))
		}

	case Unsubscribe:
		if ch, ok := that.clients[msg.MemberID]; ok && ch == msg.Outbox {
			close(ch)
			delete(that.clients, msg.MemberID)
		}

	case Publish:
		that.broadcast(msg.Update)

	case Chat:
		that.broadcast(Update{Type: TypeChat, Payload: ChatView{
			RoomID:   that.roomID,
			MemberID: msg.MemberID,
			Name:     msg.Name,
			Text:     msg.Text,
			SentAt:   time.Now().UTC(),
		}})

	case Start:
		that.start(msg)

	case Submit:
		that.submit(msg)

	case GetState:
		msg.Reply <- View{
			Version:    that.version,
			NumClients: len(that.clients),
			Started:    that.game != nil,
			Finished:   that.game != nil && that.game.IsFinished(),
			Game:       that.encodeGame(),
		}

	case turnTimeout:
		that.onTimeout(msg)
	}
}

func (that *Lobby) start(msg Start) {
	log := that.logger.With("method", "start")

	if that.game != nil {
		log.Warn("game already started")
		return
	}

	that.members = msg.Members
	that.game = msg.Game
	that.version = 0
	that.persist()

	names := make([]string, len(msg.Members))
	for i, m := range msg.Members {
		names[i] = m.Name
	}
	that.broadcast(Update{Type: TypeGameStarted, Payload: StartedView{RoomID: that.roomID, Players: names}})
	that.broadcastState()
	that.armTimer()

	log.Info("game started", "players", len(names))
}

func (that *Lobby) seatOf(memberID string) (entity.PlayerID, bool) {
	for i, m := range that.members {
		if m.ID == memberID {
			return entity.PlayerID(i), true
		}
	}
	return 0, false
}

func (that *Lobby) submit(msg Submit) {
	if that.game == nil {
		that.deliver(msg.MemberID, errorUpdate(apperror.ErrGameIsNotStarted))
		return
	}

	seat, ok := that.seatOf(msg.MemberID)
	if !ok {
		that.deliver(msg.MemberID, errorUpdate(apperror.ErrNotInRoom))
		return
	}

	that.apply(seat, msg.Action, msg.MemberID)
}

// apply runs one action; sender is empty for actions the lobby takes on a player's behalf.
func (that *Lobby) apply(seat entity.PlayerID, action engine.Action, sender string) {
	log := that.logger.With("method", "apply", "seat", seat, "action", action.Name())

	events, err := that.game.ApplyAction(seat, action)
	if err != nil {
		log.Info("action rejected", "error", err)
		if sender != "" {
			that.deliver(sender, errorUpdate(err))
		}
		return
	}

	that.version++
	that.persist()

	for id := range that.clients {
		viewer := that.viewerOf(id)
		that.deliver(id, Update{Type: TypeGameEvents, Payload: EventsView{
			RoomID:  that.roomID,
			Version: that.version,
			Player:  seat,
			Action:  engine.ActionJSON{Action: action},
			Events:  engine.RedactEvents(events, viewer),
		}})
	}
	that.broadcastState()

	log.Debug("action applied", "events", len(events), "version", that.version)

	if that.game.IsFinished() {
		that.finish()
		return
	}
	that.armTimer()
}

func (that *Lobby) persist() {
	if err := that.games.CreateOrUpdate(that.ctx, that.roomID, that.game); err != nil {
		that.logger.Error("failed to save game snapshot", "method", "persist", "error", err)
	}
}

func (that *Lobby) finish() {
	log := that.logger.With("method", "finish")

	that.stopTimer()

	winner, _ := that.game.Winner()
	record := &entity.ArchivedGame{
		ID:         that.roomID,
		RoomName:   that.roomName,
		Players:    make([]string, len(that.game.Players)),
		Scores:     make([]int, len(that.game.Players)),
		Winner:     winner,
		Turns:      that.game.Turn,
		FinishedAt: time.Now().UTC(),
	}
	for i, p := range that.game.Players {
		record.Players[i] = p.Name
		record.Scores[i] = that.game.VictoryPoints(p.ID)
	}

	data, err := snapshot.Encode(that.game)
	if err != nil {
		log.Error("failed to encode final snapshot", "error", err)
	}
	record.Snapshot = data

	if err = that.archive.Save(that.ctx, record); err != nil {
		log.Error("failed to archive game", "error", err)
	}

	log.Info("game finished", "winner", record.WinnerName(), "turns", record.Turns)

	if that.onFinish != nil {
		that.onFinish(that.roomID)
	}
}

func (that *Lobby) armTimer() {
	if that.turnTimeout <= 0 {
		return
	}
	that.stopTimer()

	version := that.version
	that.timer = time.AfterFunc(that.turnTimeout, func() {
		select {
		case that.inbox <- turnTimeout{version: version}:
		case <-that.ctx.Done():
		}
	})
}

func (that *Lobby) stopTimer() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}

func (that *Lobby) onTimeout(msg turnTimeout) {
	if that.game == nil || that.game.IsFinished() || msg.version != that.version {
		return
	}

	seat, action, err := that.stand.Choose(that.game)
	if err != nil {
		that.logger.Warn("nothing to play on timeout", "error", err)
		return
	}

	that.logger.Info("turn timed out", "seat", seat, "action", action.Name())
	that.apply(seat, action, "")
}

func (that *Lobby) encodeGame() json.RawMessage {
	if that.game == nil {
		return nil
	}

	data, err := json.Marshal(that.game)
	if err != nil {
		that.logger.Error("failed to encode game", "error", err)
		return nil
	}
	return data
}

// encodeView encodes what viewer may see; nil is a spectator.
func (that *Lobby) encodeView(viewer *entity.PlayerID) json.RawMessage {
	if that.game == nil {
		return nil
	}

	data, err := json.Marshal(that.game.Redacted(viewer))
	if err != nil {
		that.logger.Error("failed to encode game view", "error", err)
		return nil
	}
	return data
}

func (that *Lobby) viewerOf(memberID string) *entity.PlayerID {
	if seat, ok := that.seatOf(memberID); ok {
		return &seat
	}
	return nil
}

func (that *Lobby) stateUpdate(memberID string, game json.RawMessage) Update {
	view := StateView{
		RoomID:  that.roomID,
		Version: that.version,
		Game:    game,
	}

	if seat, ok := that.seatOf(memberID); ok {
		view.Seat = &seat
		for _, action := range that.game.LegalActions(seat) {
			view.LegalActions = append(view.LegalActions, engine.ActionJSON{Action: action})
		}
	}

	return Update{Type: TypeGameState, Payload: view}
}

// broadcastState sends each subscriber its own view. Spectators share one encoding.
func (that *Lobby) broadcastState() {
	var spectator json.RawMessage
	for id := range that.clients {
		viewer := that.viewerOf(id)
		if viewer != nil {
			that.deliver(id, that.stateUpdate(id, that.encodeView(viewer)))
			continue
		}
		if spectator == nil {
			spectator = that.encodeView(nil)
		}
		that.deliver(id, that.stateUpdate(id, spectator))
	}
}

func (that *Lobby) broadcast(update Update) {
	for id := range that.clients {
		that.deliver(id, update)
	}
}

// deliver never blocks: a subscriber whose buffer is full is dropped.
func (that *Lobby) deliver(memberID string, update Update) {
	ch, ok := that.clients[memberID]
	if !ok {
		return
	}

	select {
	case ch <- update:
	default:
		that.logger.Warn("dropping slow client", "member", memberID)
		close(ch)
		delete(that.clients, memberID)
	}
}

func (that *Lobby) shutdown() {
	that.stopTimer()
	for id, ch := range that.clients {
		close(ch)
		delete(that.clients, id)
	}
}

func errorUpdate(err error) Update {
	return Update{Type: TypeError, Payload: ErrorView{
		Reason:  apperror.Reason(err),
		Message: err.Error(),
	}}
}
