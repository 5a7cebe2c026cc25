package autoplay

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// Player picks an action on behalf of a seat that stopped answering.
type Player interface {
	Choose(game *engine.Game) (entity.PlayerID, engine.Action, error)
}

type randomPlayer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Player that rolls and ends turns when it can and otherwise takes a random
// legal action. A nil rng is seeded from the clock.
func NewRandom(rng *rand.Rand) Player {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint: gosec // it's ok
	}
	return &randomPlayer{rng: rng}
}

func (that *randomPlayer) Choose(game *engine.Game) (entity.PlayerID, engine.Action, error) {
	if game.IsFinished() {
		return 0, nil, ErrNoAvailableMoves
	}

	current := game.CurrentPlayer
	switch game.Phase.(type) {
	case engine.PreRoll:
		return current, engine.RollDice{}, nil
	case engine.MainPhase:
		if game.Validate(current, engine.EndTurn{}) == nil {
			return current, engine.EndTurn{}, nil
		}
	}

	// During a discard several seats owe an action; the lowest one goes first.
	for _, p := range game.Players {
		legal := game.LegalActions(p.ID)
		if len(legal) == 0 {
			continue
		}

		that.mu.Lock()
		chosen := legal[that.rng.Intn(len(legal))]
		that.mu.Unlock()

		return p.ID, chosen, nil
	}

	return 0, nil, ErrNoAvailableMoves
}
