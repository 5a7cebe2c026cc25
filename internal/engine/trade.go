package engine

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

// addressedTo reports whether player may answer the offer.
func (that *TradeOffer) addressedTo(player entity.PlayerID) bool {
	if player == that.From || slices.Contains(that.Rejected, player) {
		return false
	}
	return that.To == nil || *that.To == player
}

func validOfferSides(offering, requesting entity.ResourceHand) error {
	if !offering.IsValid() || !requesting.IsValid() || offering.IsEmpty() || requesting.IsEmpty() {
		return fmt.Errorf("%w: both sides of a trade must be non-empty", apperror.ErrUnknownTarget)
	}
	return nil
}

func (that *Game) validateProposeTrade(actor *entity.Player, a ProposeTrade) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if a.To != nil {
		if _, err := that.Player(*a.To); err != nil || *a.To == actor.ID {
			return fmt.Errorf("%w: trade partner %d", apperror.ErrUnknownTarget, *a.To)
		}
	}
	if err := validOfferSides(a.Offering, a.Requesting); err != nil {
		return err
	}
	if !actor.Resources.CanAfford(a.Offering) {
		return fmt.Errorf("%w: trade offer", apperror.ErrInsufficientResources)
	}
	return nil
}

// pendingFor checks that an offer is on the table and that player may answer it.
func (that *Game) pendingFor(player entity.PlayerID) (*TradeOffer, error) {
	if !isPhase[MainPhase](that.Phase) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}
	offer := that.PendingTrade
	if offer == nil {
		return nil, fmt.Errorf("%w: no pending trade", apperror.ErrUnknownTarget)
	}
	if slices.Contains(offer.Rejected, player) {
		return nil, fmt.Errorf("%w: trade already rejected", apperror.ErrAlreadyActedThisTurn)
	}
	if !offer.addressedTo(player) {
		return nil, fmt.Errorf("%w: trade is not addressed to player %d", apperror.ErrNotYourTurn, player)
	}
	return offer, nil
}

func (that *Game) validateAcceptTrade(actor *entity.Player) error {
	offer, err := that.pendingFor(actor.ID)
	if err != nil {
		return err
	}
	if !that.Players[offer.From].Resources.CanAfford(offer.Offering) {
		return fmt.Errorf("%w: proposer can no longer pay", apperror.ErrInsufficientResources)
	}
	if !actor.Resources.CanAfford(offer.Requesting) {
		return fmt.Errorf("%w: trade", apperror.ErrInsufficientResources)
	}
	return nil
}

func (that *Game) validateRespondTrade(actor *entity.Player) error {
	_, err := that.pendingFor(actor.ID)
	return err
}

func (that *Game) validateCounterTrade(actor *entity.Player, a CounterTrade) error {
	if _, err := that.pendingFor(actor.ID); err != nil {
		return err
	}
	if err := validOfferSides(a.Offering, a.Requesting); err != nil {
		return err
	}
	if !actor.Resources.CanAfford(a.Offering) {
		return fmt.Errorf("%w: counter offer", apperror.ErrInsufficientResources)
	}
	return nil
}

func (that *Game) validateCancelTrade(actor *entity.Player) error {
	if !isPhase[MainPhase](that.Phase) {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}
	if that.PendingTrade == nil {
		return fmt.Errorf("%w: no pending trade", apperror.ErrUnknownTarget)
	}
	if that.PendingTrade.From != actor.ID {
		return fmt.Errorf("%w: only the proposer can cancel", apperror.ErrNotYourTurn)
	}
	return nil
}

// clearTrade drops any pending offer and reports it.
func (that *Game) clearTrade() []Event {
	if that.PendingTrade == nil {
		return nil
	}
	from := that.PendingTrade.From
	that.PendingTrade = nil
	return []Event{TradeCancelled{From: from}}
}

func (that *Game) applyProposeTrade(actor *entity.Player, a ProposeTrade) []Event {
	events := that.clearTrade()

	offer := &TradeOffer{
		From:       actor.ID,
		Offering:   a.Offering,
		Requesting: a.Requesting,
	}
	if a.To != nil {
		to := *a.To
		offer.To = &to
	}
	that.PendingTrade = offer

	return append(events, TradeProposed{Offer: *offer})
}

func (that *Game) applyCounterTrade(actor *entity.Player, a CounterTrade) []Event {
	to := that.PendingTrade.From
	offer := &TradeOffer{
		From:       actor.ID,
		To:         &to,
		Offering:   a.Offering,
		Requesting: a.Requesting,
	}
	that.PendingTrade = offer

	return []Event{TradeProposed{Offer: *offer, Counter: true}}
}

func (that *Game) applyAcceptTrade(actor *entity.Player) ([]Event, error) {
	offer := that.PendingTrade
	proposer := that.Players[offer.From]

	if err := proposer.Resources.Debit(offer.Offering); err != nil {
		return nil, err
	}
	if err := actor.Resources.Debit(offer.Requesting); err != nil {
		return nil, err
	}
	if err := proposer.Resources.Credit(offer.Requesting); err != nil {
		return nil, err
	}
	if err := actor.Resources.Credit(offer.Offering); err != nil {
		return nil, err
	}

	that.PendingTrade = nil

	return []Event{TradeCompleted{
		From:       offer.From,
		To:         actor.ID,
		Offering:   offer.Offering,
		Requesting: offer.Requesting,
	}}, nil
}

// applyRejectTrade clears an addressed offer; an open offer is dropped once every other player
// has turned it down.
func (that *Game) applyRejectTrade(actor *entity.Player) []Event {
	offer := that.PendingTrade
	events := []Event{TradeRejected{Player: actor.ID}}

	if offer.To != nil {
		that.PendingTrade = nil
		return events
	}

	offer.Rejected = append(offer.Rejected, actor.ID)
	if len(offer.Rejected) >= len(that.Players)-1 {
		events = append(events, that.clearTrade()...)
	}
	return events
}

func (that *Game) applyMaritimeTrade(actor *entity.Player, a MaritimeTrade) ([]Event, error) {
	if err := actor.Resources.Debit(entity.HandOf(a.Give, a.GiveCount)); err != nil {
		return nil, err
	}
	if err := actor.Resources.Credit(entity.HandOf(a.Receive, 1)); err != nil {
		return nil, err
	}

	return []Event{MaritimeTradeCompleted{
		Player:    actor.ID,
		Give:      a.Give,
		GiveCount: a.GiveCount,
		Receive:   a.Receive,
	}}, nil
}
