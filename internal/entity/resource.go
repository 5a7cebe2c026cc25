package entity

import (
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
)

type Resource string

const (
	Brick  Resource = "Brick"
	Lumber Resource = "Lumber"
	Ore    Resource = "Ore"
	Grain  Resource = "Grain"
	Wool   Resource = "Wool"
)

// AllResources is the fixed iteration order used everywhere a hand is walked.
var AllResources = [5]Resource{Brick, Lumber, Ore, Grain, Wool}

func (that Resource) Valid() bool {
	switch that {
	case Brick, Lumber, Ore, Grain, Wool:
		return true
	default:
		return false
	}
}

// ResourceHand holds non-negative counts of each resource.
type ResourceHand struct {
	Brick  int `json:"brick"`
	Lumber int `json:"lumber"`
	Ore    int `json:"ore"`
	Grain  int `json:"grain"`
	Wool   int `json:"wool"`
}

var (
	RoadCost            = ResourceHand{Brick: 1, Lumber: 1}
	SettlementCost      = ResourceHand{Brick: 1, Lumber: 1, Grain: 1, Wool: 1}
	CityCost            = ResourceHand{Ore: 3, Grain: 2}
	DevelopmentCardCost = ResourceHand{Ore: 1, Grain: 1, Wool: 1}
)

// HandOf builds a hand holding count of a single resource.
func HandOf(r Resource, count int) ResourceHand {
	var hand ResourceHand
	hand.Add(r, count)
	return hand
}

func (that *ResourceHand) slot(r Resource) *int {
	switch r {
	case Brick:
		return &that.Brick
	case Lumber:
		return &that.Lumber
	case Ore:
		return &that.Ore
	case Grain:
		return &that.Grain
	case Wool:
		return &that.Wool
	default:
		return nil
	}
}

func (that ResourceHand) Get(r Resource) int {
	if p := that.slot(r); p != nil {
		return *p
	}
	return 0
}

// Add adjusts a single count. Unknown resources are ignored.
func (that *ResourceHand) Add(r Resource, n int) {
	if p := that.slot(r); p != nil {
		*p += n
	}
}

// Take empties one resource and returns how many there were.
func (that *ResourceHand) Take(r Resource) int {
	p := that.slot(r)
	if p == nil {
		return 0
	}
	n := *p
	*p = 0
	return n
}

func (that ResourceHand) Total() int {
	return that.Brick + that.Lumber + that.Ore + that.Grain + that.Wool
}

func (that ResourceHand) IsEmpty() bool {
	return that.Total() == 0
}

// IsValid reports whether no count is negative.
func (that ResourceHand) IsValid() bool {
	for _, r := range AllResources {
		if that.Get(r) < 0 {
			return false
		}
	}
	return true
}

func (that ResourceHand) CanAfford(cost ResourceHand) bool {
	for _, r := range AllResources {
		if that.Get(r) < cost.Get(r) {
			return false
		}
	}
	return true
}

// Debit removes cost from the hand, or leaves it untouched and returns ErrInsufficientResources.
func (that *ResourceHand) Debit(cost ResourceHand) error {
	if !cost.IsValid() {
		return fmt.Errorf("%w: negative debit %+v", apperror.ErrInsufficientResources, cost)
	}
	if !that.CanAfford(cost) {
		return fmt.Errorf("%w: need %+v, have %+v", apperror.ErrInsufficientResources, cost, *that)
	}

	for _, r := range AllResources {
		that.Add(r, -cost.Get(r))
	}
	return nil
}

// Credit adds gain to the hand. A gain with negative counts is refused the same way Debit refuses.
func (that *ResourceHand) Credit(gain ResourceHand) error {
	if !gain.IsValid() {
		return fmt.Errorf("%w: negative credit %+v", apperror.ErrInsufficientResources, gain)
	}

	for _, r := range AllResources {
		that.Add(r, gain.Get(r))
	}
	return nil
}

// NthCard returns the resource of the n-th card when the hand is laid out in AllResources order.
func (that ResourceHand) NthCard(n int) (Resource, bool) {
	for _, r := range AllResources {
		c := that.Get(r)
		if n < c {
			return r, true
		}
		n -= c
	}
	return "", false
}
