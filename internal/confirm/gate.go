// Package confirm implements the confirmation gate: a two-state machine
// pairing one pending ad mutation with the user's confirm/cancel decision.
// Destructive and visibility-changing actions reach the record store only
// through Confirm.
package confirm

import (
	"context"
	"sync"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/models"
)

// Kind of a gated mutation.
type Kind string

const (
	KindToggle Kind = "toggle"
	KindDelete Kind = "delete"
)

// PendingAction is a requested mutation awaiting the user's decision. It
// exists only between Request and Confirm/Cancel.
type PendingAction struct {
	Ad   *models.Ad
	Kind Kind
}

// Applier executes confirmed mutations. The ad lifecycle service
// satisfies it.
type Applier interface {
	ApplyToggle(ctx context.Context, actingUserID string, ad *models.Ad) error
	ApplyDelete(ctx context.Context, actingUserID string, ad *models.Ad) error
}

// Gate holds at most one PendingAction. A second Request while one is
// pending replaces it (last request wins; no queueing).
type Gate struct {
	applier Applier

	mu      sync.Mutex
	pending *PendingAction
}

// NewGate constructs an idle gate dispatching confirmed actions to applier.
func NewGate(applier Applier) *Gate {
	return &Gate{applier: applier}
}

// Request stores ad+kind as the pending action, replacing any prior one.
func (g *Gate) Request(ad *models.Ad, kind Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &PendingAction{Ad: ad, Kind: kind}
}

// Pending returns the action awaiting a decision, or nil when idle.
func (g *Gate) Pending() *PendingAction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Confirm executes the pending action on behalf of actingUserID. The
// pending action is cleared regardless of the outcome; the applier's error
// is passed through. Returns common.ErrNothingPending when the gate is
// idle.
func (g *Gate) Confirm(ctx context.Context, actingUserID string) error {
	g.mu.Lock()
	action := g.pending
	g.pending = nil
	g.mu.Unlock()

	if action == nil {
		return common.ErrNothingPending
	}

	switch action.Kind {
	case KindDelete:
		return g.applier.ApplyDelete(ctx, actingUserID, action.Ad)
	default:
		return g.applier.ApplyToggle(ctx, actingUserID, action.Ad)
	}
}

// Cancel clears the pending action without executing anything.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}
