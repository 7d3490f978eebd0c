// Package registry tracks per-player linking state for the lifetime of one
// game session: who is linked, who holds an outstanding verification code,
// and who recently connected without a link.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rolelink/rolelink/internal/dependencies/clock"
	"github.com/rolelink/rolelink/internal/dependencies/random"
	"github.com/rolelink/rolelink/internal/model"
)

const (
	// CodeLength is the length of generated verification codes
	CodeLength = 4
	// CodeAlphabet is the characters used in verification codes; visually
	// confusable characters (0/O, 1/I, B/8) are excluded
	CodeAlphabet = "ACDEFGHJKLMNPQRSTUVWXYZ123456789"
)

// Registry is the in-memory link state machine. All methods are safe for
// concurrent use; the host delivers events from arbitrary goroutines.
type Registry struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu sync.RWMutex
	// statuses holds pending and linked entries; absent means unlinked
	statuses map[model.PlayerID]model.LinkStatus
	// codes indexes currently pending codes by value, unique among pending
	codes map[string]model.PlayerID
	// connecting holds arm timestamps for the delayed-reminder mechanism
	connecting map[model.PlayerID]time.Time
}

// New creates a new Registry
func New(clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		clock:      clk,
		random:     rnd,
		logger:     logger,
		statuses:   make(map[model.PlayerID]model.LinkStatus),
		codes:      make(map[string]model.PlayerID),
		connecting: make(map[model.PlayerID]time.Time),
	}
}

// RequestResult is the outcome of a link request
type RequestResult struct {
	// AlreadyLinked is set when the player holds a completed link;
	// IdentityTag carries the linked tag and Code is empty.
	AlreadyLinked bool
	IdentityTag   model.IdentityTag

	// Code is the verification code to type in the linking channel.
	// Requesting again before completion returns the same code.
	Code string
}

// RequestLink issues a verification code for the player, or reports the
// existing link. Idempotent while a code is outstanding.
func (r *Registry) RequestLink(id model.PlayerID) RequestResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.statuses[id]
	switch status.State {
	case model.LinkStateLinked:
		return RequestResult{AlreadyLinked: true, IdentityTag: status.IdentityTag}
	case model.LinkStatePending:
		return RequestResult{Code: status.Code}
	}

	code := r.generateCodeLocked()
	if code == "" {
		// Invariant: the generator must produce a non-empty unique code
		r.logger.Error("code generation produced empty code", slog.Uint64("player_id", uint64(id)))
		return RequestResult{}
	}

	r.statuses[id] = model.LinkStatus{
		State:         model.LinkStatePending,
		Code:          code,
		CodeCreatedAt: r.clock.Now(),
	}
	r.codes[code] = id
	return RequestResult{Code: code}
}

// generateCodeLocked draws codes until one not held by any pending player
// comes up. Uniqueness is only required among currently pending codes.
func (r *Registry) generateCodeLocked() string {
	for {
		code := r.random.String(CodeLength, CodeAlphabet)
		if code == "" {
			return ""
		}
		if _, taken := r.codes[code]; !taken {
			return code
		}
	}
}

// CompleteLink transitions a pending player to linked and clears the code.
// It trusts that the caller already matched the code. A completion for a
// player who is not pending is a no-op, so a late or duplicate completion
// never clobbers newer state. Reports whether the transition happened.
func (r *Registry) CompleteLink(id model.PlayerID, tag model.IdentityTag) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.statuses[id]
	if status.State != model.LinkStatePending {
		return false
	}

	delete(r.codes, status.Code)
	delete(r.connecting, id)
	r.statuses[id] = model.LinkStatus{
		State:       model.LinkStateLinked,
		IdentityTag: tag,
	}
	return true
}

// RestorePending rolls a player back to pending with the original code,
// used when durable persistence of a completed link fails. The registry
// must never stay linked while the directory disagrees.
func (r *Registry) RestorePending(id model.PlayerID, code string, createdAt time.Time) {
	if code == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.codes[code]; taken && owner != id {
		// Invariant: a rolled-back code cannot belong to another player
		r.logger.Error("pending code collision on rollback",
			slog.String("code", code),
			slog.Uint64("player_id", uint64(id)),
			slog.Uint64("owner_id", uint64(owner)))
		delete(r.statuses, id)
		return
	}

	if current := r.statuses[id]; current.State == model.LinkStatePending && current.Code != code {
		// A newer code was issued while persistence was in flight; keep it
		return
	}

	r.statuses[id] = model.LinkStatus{
		State:         model.LinkStatePending,
		Code:          code,
		CodeCreatedAt: createdAt,
	}
	r.codes[code] = id
}

// MarkLinked primes the linked cache from a directory lookup. Any pending
// code for the player is discarded.
func (r *Registry) MarkLinked(id model.PlayerID, tag model.IdentityTag) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status := r.statuses[id]; status.State == model.LinkStatePending {
		delete(r.codes, status.Code)
	}
	delete(r.connecting, id)
	r.statuses[id] = model.LinkStatus{
		State:       model.LinkStateLinked,
		IdentityTag: tag,
	}
}

// MarkUnlinked drops a linked cache entry after the directory reported no
// identity on re-resolution. A pending code is left untouched.
func (r *Registry) MarkUnlinked(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status := r.statuses[id]; status.State == model.LinkStateLinked {
		delete(r.statuses, id)
	}
}

// MarkDisconnected clears the player's connecting entry and any pending
// code. A code tied to a session that ended must not be matchable after
// reconnect.
func (r *Registry) MarkDisconnected(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connecting, id)
	if status := r.statuses[id]; status.State == model.LinkStatePending {
		delete(r.codes, status.Code)
		delete(r.statuses, id)
	}
}

// StatusOf returns a read-only snapshot of the player's link status
func (r *Registry) StatusOf(id model.PlayerID) model.LinkStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.statuses[id]
	if !ok {
		return model.LinkStatus{State: model.LinkStateUnlinked}
	}
	return status
}

// MarkConnecting records that the player joined without a known link
func (r *Registry) MarkConnecting(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connecting[id] = r.clock.Now()
}

// IsConnecting reports whether the player still has a connecting entry
func (r *Registry) IsConnecting(id model.PlayerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connecting[id]
	return ok
}

// ClearConnecting removes the player's connecting entry, called when the
// reminder fires so it cannot fire again
func (r *Registry) ClearConnecting(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connecting, id)
}

// PendingCodes returns a snapshot of outstanding codes by value. Callers
// must match against the snapshot and commit through CompleteLink, never
// hold assumptions across I/O.
func (r *Registry) PendingCodes() map[string]model.PlayerID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.PlayerID, len(r.codes))
	for code, id := range r.codes {
		out[code] = id
	}
	return out
}

// Reset clears all state, called on session teardown
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses = make(map[model.PlayerID]model.LinkStatus)
	r.codes = make(map[string]model.PlayerID)
	r.connecting = make(map[model.PlayerID]time.Time)
}
