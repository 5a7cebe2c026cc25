package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/board"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

const (
	MinPlayers = 2
	MaxPlayers = 4

	DefaultVictoryTarget = 10
	DefaultBonusPoints   = 1

	minLongestRoad = 5
	minLargestArmy = 3
	discardLimit   = 7
)

var ErrInvalidPlayerCount = errors.New("invalid player count")

type DiceRoll struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

func (that DiceRoll) Sum() int {
	return that.First + that.Second
}

// TradeOffer is the single outstanding player-to-player offer. To is nil for an open offer.
type TradeOffer struct {
	From       entity.PlayerID     `json:"from"`
	To         *entity.PlayerID    `json:"to,omitempty"`
	Offering   entity.ResourceHand `json:"offering"`
	Requesting entity.ResourceHand `json:"requesting"`
	Rejected   []entity.PlayerID   `json:"rejected,omitempty"`
}

// Game is the authoritative state of one match. It assumes a single writer: callers serialize
// ApplyAction per game.
type Game struct {
	Board           *board.Board         `json:"board"`
	Players         []*entity.Player     `json:"players"`
	CurrentPlayer   entity.PlayerID      `json:"current_player"`
	Phase           Phase                `json:"phase"`
	LastRoll        *DiceRoll            `json:"last_roll,omitempty"`
	PendingTrade    *TradeOffer          `json:"pending_trade,omitempty"`
	Turn            int                  `json:"turn"`
	DevDeck         []entity.DevCardType `json:"dev_deck"`
	DevCardPlayed   bool                 `json:"dev_card_played"`
	SetupSettlement *hexgrid.VertexCoord `json:"setup_settlement,omitempty"`
	VictoryTarget   int                  `json:"victory_target"`
	BonusPoints     int                  `json:"bonus_points"`

	rng *rand.Rand
}

type Option func(*Game)

// WithRand fixes the source used for dice, the deck shuffle and steals.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

func WithBoard(b *board.Board) Option {
	return func(g *Game) {
		g.Board = b
	}
}

func WithVictoryTarget(points int) Option {
	return func(g *Game) {
		if points > 0 {
			g.VictoryTarget = points
		}
	}
}

// WithBonusPoints sets what Longest Road and Largest Army are each worth.
func WithBonusPoints(points int) Option {
	return func(g *Game) {
		if points > 0 {
			g.BonusPoints = points
		}
	}
}

// New seats the named players in order and starts the setup draft on the standard board unless
// another board is supplied.
func New(names []string, opts ...Option) (*Game, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayerCount, len(names))
	}

	game := &Game{
		Phase:         Setup{Round: 1, Placing: PlacingSettlement},
		VictoryTarget: DefaultVictoryTarget,
		BonusPoints:   DefaultBonusPoints,
	}

	for _, opt := range opts {
		opt(game)
	}

	if game.Board == nil {
		game.Board = board.Standard()
	}

	game.Players = make([]*entity.Player, len(names))
	for i, name := range names {
		game.Players[i] = entity.NewPlayer(entity.PlayerID(i), name)
	}

	game.DevDeck = entity.NewDevDeck()
	rng := game.random()
	rng.Shuffle(len(game.DevDeck), func(i, j int) {
		game.DevDeck[i], game.DevDeck[j] = game.DevDeck[j], game.DevDeck[i]
	})

	return game, nil
}

// SetRand replaces the random source, typically after restoring a snapshot.
func (that *Game) SetRand(rng *rand.Rand) {
	that.rng = rng
}

func (that *Game) random() *rand.Rand {
	if that.rng == nil {
		that.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game dice
	}
	return that.rng
}

// Player returns the player in seat id.
func (that *Game) Player(id entity.PlayerID) (*entity.Player, error) {
	if id < 0 || int(id) >= len(that.Players) {
		return nil, fmt.Errorf("%w: player %d", apperror.ErrUnknownTarget, id)
	}
	return that.Players[id], nil
}

func (that *Game) current() *entity.Player {
	return that.Players[that.CurrentPlayer]
}

func (that *Game) DiceRoll() *DiceRoll {
	return that.LastRoll
}

func (that *Game) IsFinished() bool {
	_, ok := that.Phase.(Finished)
	return ok
}

func (that *Game) Winner() (entity.PlayerID, bool) {
	if finished, ok := that.Phase.(Finished); ok {
		return finished.Winner, true
	}
	return 0, false
}

// PublicVictoryPoints counts what every player can see: buildings and held bonuses.
func (that *Game) PublicVictoryPoints(id entity.PlayerID) int {
	player, err := that.Player(id)
	if err != nil {
		return 0
	}

	settlements, cities := that.Board.CountBuildings(id)
	points := settlements + 2*cities
	if player.HasLongestRoad {
		points += that.BonusPoints
	}
	if player.HasLargestArmy {
		points += that.BonusPoints
	}
	return points
}

// VictoryPoints adds hidden victory point cards to the public score.
func (that *Game) VictoryPoints(id entity.PlayerID) int {
	player, err := that.Player(id)
	if err != nil {
		return 0
	}
	return that.PublicVictoryPoints(id) + player.HiddenVictoryPoints()
}

// Redacted copies the game for viewer, or for a spectator when viewer is nil. The deck keeps its size
// but not its faces, and other seats' development cards are zeroed. The copy is for display only.
func (that *Game) Redacted(viewer *entity.PlayerID) *Game {
	view := *that
	view.rng = nil

	view.DevDeck = make([]entity.DevCardType, len(that.DevDeck))
	for i := range view.DevDeck {
		view.DevDeck[i] = entity.HiddenCard
	}

	view.Players = make([]*entity.Player, len(that.Players))
	for i, p := range that.Players {
		player := *p
		if viewer == nil || *viewer != p.ID {
			player.DevCards = entity.DevCards{}
			player.DevCardsBoughtThisTurn = entity.DevCards{}
		}
		view.Players[i] = &player
	}
	return &view
}

// ValidActions is the legal action set for player in the current state.
func (that *Game) ValidActions(player entity.PlayerID) []Action {
	return that.LegalActions(player)
}

func (that *Game) nextPlayer() entity.PlayerID {
	return entity.PlayerID((int(that.CurrentPlayer) + 1) % len(that.Players))
}
