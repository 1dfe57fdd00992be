package vote

import (
	"context"
	"sync"

	"threadline/internal/apperr"
	"threadline/internal/models"
	"threadline/internal/store"
)

// Reconciler owns one user's vote on one post for the lifetime of a viewing
// session. Transitions are applied locally first and then persisted.
//
// Persistence probes for the existing row and updates or inserts it. Two
// sessions of the same user race on that probe; the last write wins.
type Reconciler struct {
	store  store.VoteStore
	userID uint
	postID uint

	mu    sync.Mutex
	state State
}

// NewReconciler starts a session from an already known state, usually the
// result of TallyFrom.
func NewReconciler(s store.VoteStore, userID, postID uint, initial State) *Reconciler {
	return &Reconciler{store: s, userID: userID, postID: postID, state: initial}
}

// State returns a snapshot of the local state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cast applies requested to the local state and persists the result.
//
// The returned State is the optimistic one even when err is a store
// failure; the tally is not rolled back and callers that need exact counts
// should reload them.
func (r *Reconciler) Cast(ctx context.Context, requested Value) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := Apply(r.state.Vote, requested)
	if err != nil {
		return r.state, err
	}

	r.state.Tally.Shift(r.state.Vote, next)
	r.state.Vote = next

	return r.state, r.persist(ctx, next)
}

// persist reports every failure as a *apperr.StoreError, including a
// conflict from a concurrent first insert.
func (r *Reconciler) persist(ctx context.Context, next Value) error {
	existing, err := r.store.ProbeVote(ctx, r.userID, r.postID)
	if err != nil {
		return &apperr.StoreError{Op: "probe vote", Err: err}
	}
	if existing != nil {
		err = r.store.UpdateVote(ctx, existing.ID, int8(next))
		if err != nil {
			return &apperr.StoreError{Op: "update vote", Err: err}
		}
		return nil
	}
	err = r.store.InsertVote(ctx, &models.Vote{
		UserID: r.userID,
		PostID: r.postID,
		Value:  int8(next),
	})
	if err != nil {
		return &apperr.StoreError{Op: "insert vote", Err: err}
	}
	return nil
}
