package services

import (
	"context"

	"github.com/rs/zerolog"

	"threadline/internal/apperr"
	"threadline/internal/identity"
	"threadline/internal/store"
	"threadline/internal/vote"
)

// VoteService opens vote sessions for a post. Each session reads the
// persisted state once and then owns every transition locally.
type VoteService struct {
	store   store.VoteStore
	ranking ScoreScheduler
	log     zerolog.Logger
}

func NewVoteService(s store.VoteStore, ranking ScoreScheduler, log zerolog.Logger) *VoteService {
	if ranking == nil {
		ranking = nopScheduler{}
	}
	return &VoteService{store: s, ranking: ranking, log: log}
}

// tally is display only, a failed read leaves it at zero.
func (s *VoteService) tally(ctx context.Context, postID uint) vote.Tally {
	records, err := s.store.FetchVotes(ctx, postID)
	if err != nil {
		s.log.Error().Err(err).Uint("post_id", postID).Msg("fetch votes failed")
		return vote.Tally{}
	}
	t, _ := vote.TallyFrom(records, 0)
	return t
}

func (s *VoteService) prior(ctx context.Context, userID, postID uint) (vote.Value, error) {
	v, err := s.store.ProbeVote(ctx, userID, postID)
	if err != nil {
		return vote.None, &apperr.StoreError{Op: "probe vote", Err: err}
	}
	if v == nil {
		return vote.None, nil
	}
	return vote.Value(v.Value), nil
}

// Snapshot reads the tally of postID and, when ident is set, the caller's
// vote. Read failures are logged and the affected part stays zero.
func (s *VoteService) Snapshot(ctx context.Context, ident *identity.Identity, postID uint) vote.State {
	state := vote.State{Tally: s.tally(ctx, postID)}
	if identity.Require(ident) != nil {
		return state
	}

	v, err := s.prior(ctx, ident.UserID, postID)
	if err != nil {
		s.log.Error().Err(err).Uint("post_id", postID).Uint("user_id", ident.UserID).Msg("probe vote failed")
		return state
	}
	state.Vote = v
	return state
}

// Open starts a vote session for ident on postID. Unlike Snapshot it fails
// when the caller's vote cannot be read: every later transition starts from it.
func (s *VoteService) Open(ctx context.Context, ident *identity.Identity, postID uint) (*vote.Reconciler, error) {
	if err := identity.Require(ident); err != nil {
		return nil, err
	}
	v, err := s.prior(ctx, ident.UserID, postID)
	if err != nil {
		return nil, err
	}
	state := vote.State{Vote: v, Tally: s.tally(ctx, postID)}
	return vote.NewReconciler(s.store, ident.UserID, postID, state), nil
}

// Cast is a single-shot session: open, apply requested, persist.
func (s *VoteService) Cast(ctx context.Context, ident *identity.Identity, postID uint, requested vote.Value) (vote.State, error) {
	if err := identity.Require(ident); err != nil {
		return vote.State{}, err
	}
	if err := vote.CheckRequest(requested); err != nil {
		return vote.State{}, err
	}

	r, err := s.Open(ctx, ident, postID)
	if err != nil {
		return vote.State{}, err
	}

	state, err := r.Cast(ctx, requested)
	if err != nil {
		return state, err
	}

	s.ranking.ScheduleUpdate(postID)
	s.log.Info().Uint("post_id", postID).Uint("user_id", ident.UserID).Int8("vote", int8(state.Vote)).Msg("vote cast")
	return state, nil
}
