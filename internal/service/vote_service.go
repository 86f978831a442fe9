package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/observability"
	"github.com/emilythestrangee/community-board/backend/internal/repository"
	"github.com/emilythestrangee/community-board/backend/internal/voting"
)

// VoteResult is what a caller sees after a committed vote.
type VoteResult struct {
	PostID     int
	State      voting.State
	NetVotes   int
	Transition voting.Transition
	Attempts   int
}

// VoteAudit compares the stored aggregate with the ledger it is derived from.
type VoteAudit struct {
	PostID     int   `json:"post_id"`
	NetVotes   int   `json:"net_votes"`
	LedgerSum  int   `json:"ledger_sum"`
	VoteRows   int64 `json:"vote_rows"`
	Consistent bool  `json:"consistent"`
}

// VoteService is the only writer of the vote ledger and posts.net_votes.
type VoteService struct {
	db      *gorm.DB
	votes   *repository.VoteLedger
	posts   *repository.AggregateStore
	retry   RetryPolicy
	timeout time.Duration
	log     *logger.Logger
}

func NewVoteService(db *gorm.DB, retry RetryPolicy, timeout time.Duration, log *logger.Logger) *VoteService {
	return &VoteService{
		db:      db,
		votes:   repository.NewVoteLedger(db),
		posts:   repository.NewAggregateStore(db),
		retry:   retry,
		timeout: timeout,
		log:     log.With("service", "VoteService"),
	}
}

// SubmitVote applies the transition for (current state, requested) and the
// matching net_votes delta in one transaction. Conflicts are retried.
func (s *VoteService) SubmitVote(ctx context.Context, postID, userID, requested int) (*VoteResult, error) {
	if userID <= 0 {
		return nil, models.NewUnauthenticatedError()
	}
	if !voting.ValidValue(requested) {
		return nil, models.NewInvalidRequestError("Invalid vote value")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := observability.Tracer.Start(ctx, "VoteService.SubmitVote", trace.WithAttributes(
		attribute.Int("post.id", postID),
		attribute.Int("user.id", userID),
		attribute.Int("vote.requested", requested),
	))
	defer span.End()

	start := time.Now()
	attempts := 0
	var result *VoteResult
	err := s.retry.Do(ctx, func() error {
		attempts++
		if attempts > 1 {
			observability.VoteConflictRetries.Inc()
		}
		r, err := s.submitOnce(ctx, postID, userID, requested)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Kind != models.KindStoreFailure {
			observability.VoteTxDuration.WithLabelValues("rejected").Observe(time.Since(start).Seconds())
			return nil, appErr
		}
		observability.VoteTxDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "vote failed")
		s.log.Error("vote transaction failed",
			"post_id", postID, "user_id", userID, "attempts", attempts, "error", err)
		return nil, models.NewStoreError("Failed to update vote", err)
	}

	result.Attempts = attempts
	observability.VoteTxDuration.WithLabelValues("committed").Observe(time.Since(start).Seconds())
	observability.VotesTotal.WithLabelValues(result.Transition.Name()).Inc()
	span.SetAttributes(
		attribute.String("vote.transition", result.Transition.Name()),
		attribute.Int("post.net_votes", result.NetVotes),
	)
	s.log.Debug("vote committed",
		"post_id", postID, "user_id", userID,
		"transition", result.Transition.Name(), "net_votes", result.NetVotes, "attempts", attempts)
	return result, nil
}

func (s *VoteService) submitOnce(ctx context.Context, postID, userID, requested int) (*VoteResult, error) {
	var result *VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		votes := s.votes.WithTx(tx)

		post, err := posts.LockPost(ctx, postID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		if err != nil {
			return err
		}
		if post.AuthorID == userID {
			return models.NewSelfVoteError()
		}

		existing, err := votes.GetForUpdate(ctx, postID, userID)
		if err != nil {
			return err
		}
		current := voting.None
		if existing != nil {
			if current, err = voting.StateFromValue(existing.Value); err != nil {
				return err
			}
		}

		tr, ok := voting.Next(current, requested)
		if !ok {
			return models.NewInvalidRequestError("Invalid vote value")
		}

		switch tr.Op {
		case voting.OpInsert:
			err = votes.Insert(ctx, &models.Vote{PostID: postID, UserID: userID, Value: tr.Next.Value()})
		case voting.OpUpdate:
			err = votes.UpdateValue(ctx, existing.ID, tr.Next.Value())
		case voting.OpDelete:
			err = votes.Delete(ctx, existing.ID)
		default:
			err = fmt.Errorf("unknown ledger op %v", tr.Op)
		}
		if err != nil {
			return err
		}

		netVotes, err := posts.ApplyDelta(ctx, postID, tr.Delta)
		if err != nil {
			return err
		}

		result = &VoteResult{
			PostID:     postID,
			State:      tr.Next,
			NetVotes:   netVotes,
			Transition: tr,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentVote returns the caller's stance on a post.
func (s *VoteService) CurrentVote(ctx context.Context, postID, userID int) (voting.State, error) {
	if userID <= 0 {
		return voting.None, models.NewUnauthenticatedError()
	}
	if _, err := s.posts.NetVotes(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return voting.None, models.NewNotFoundError("Post")
		}
		return voting.None, models.NewStoreError("Failed to load vote", err)
	}
	vote, err := s.votes.Get(ctx, postID, userID)
	if err != nil {
		return voting.None, models.NewStoreError("Failed to load vote", err)
	}
	if vote == nil {
		return voting.None, nil
	}
	state, err := voting.StateFromValue(vote.Value)
	if err != nil {
		return voting.None, models.NewStoreError("Failed to load vote", err)
	}
	return state, nil
}

// Audit reads the aggregate and the ledger sum under the post's row lock.
func (s *VoteService) Audit(ctx context.Context, postID int) (*VoteAudit, error) {
	var audit *VoteAudit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.posts.WithTx(tx).LockPost(ctx, postID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		if err != nil {
			return err
		}
		votes := s.votes.WithTx(tx)
		sum, err := votes.SumForPost(ctx, postID)
		if err != nil {
			return err
		}
		rows, err := votes.CountForPost(ctx, postID)
		if err != nil {
			return err
		}
		audit = &VoteAudit{
			PostID:     postID,
			NetVotes:   post.NetVotes,
			LedgerSum:  sum,
			VoteRows:   rows,
			Consistent: post.NetVotes == sum,
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewStoreError("Failed to audit votes", err)
	}
	if !audit.Consistent {
		s.log.Warn("net_votes drift detected", "post_id", postID, "net_votes", audit.NetVotes, "ledger_sum", audit.LedgerSum)
	}
	return audit, nil
}
