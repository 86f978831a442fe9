package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/observability"
	"github.com/emilythestrangee/community-board/backend/internal/repository"
)

// RoleChecker answers whether a user holds a role.
type RoleChecker interface {
	HasRole(ctx context.Context, userID int, role string) (bool, error)
}

// FlagPolicy decides when reported content counts as flagged.
type FlagPolicy struct {
	MinReports        int
	DistinctReporters bool
}

func DefaultFlagPolicy() FlagPolicy {
	return FlagPolicy{MinReports: 1}
}

// ModerationService builds the flagged view from the report ledger on every call.
type ModerationService struct {
	reports *repository.ReportLedger
	content *repository.ContentStore
	roles   RoleChecker
	policy  FlagPolicy
	log     *logger.Logger
}

func NewModerationService(db *gorm.DB, roles RoleChecker, policy FlagPolicy, log *logger.Logger) *ModerationService {
	if policy.MinReports < 1 {
		policy.MinReports = 1
	}
	return &ModerationService{
		reports: repository.NewReportLedger(db),
		content: repository.NewContentStore(db),
		roles:   roles,
		policy:  policy,
		log:     log.With("service", "ModerationService"),
	}
}

// RequireModerator fails with Unauthorized unless the caller holds the moderator role.
func (s *ModerationService) RequireModerator(ctx context.Context, callerID int) error {
	if callerID <= 0 {
		return models.NewUnauthorizedError()
	}
	ok, err := s.roles.HasRole(ctx, callerID, models.RoleModerator)
	if err != nil {
		s.log.Error("role lookup failed", "user_id", callerID, "error", err)
		return models.NewStoreError("Failed to check permissions", err)
	}
	if !ok {
		return models.NewUnauthorizedError()
	}
	return nil
}

// ListFlagged returns flagged posts and comments, newest content first, each
// with its report count.
func (s *ModerationService) ListFlagged(ctx context.Context, callerID int) (*models.FlaggedContent, error) {
	if err := s.RequireModerator(ctx, callerID); err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer.Start(ctx, "ModerationService.ListFlagged")
	defer span.End()

	var (
		posts    []models.FlaggedPost
		comments []models.FlaggedComment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.flaggedPosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.flaggedComments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("error fetching flagged content", "error", err)
		return nil, models.NewStoreError("Failed to fetch flagged content", err)
	}

	span.SetAttributes(
		attribute.Int("flagged.posts", len(posts)),
		attribute.Int("flagged.comments", len(comments)),
	)
	return &models.FlaggedContent{Posts: posts, Comments: comments}, nil
}

func (s *ModerationService) countsFor(ctx context.Context, targetType string) ([]int, map[int]int64, error) {
	rows, err := s.reports.CountByTarget(ctx, targetType, s.policy.MinReports, s.policy.DistinctReporters)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int, 0, len(rows))
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TargetID)
		counts[row.TargetID] = row.ReportCount
	}
	return ids, counts, nil
}

func (s *ModerationService) flaggedPosts(ctx context.Context) ([]models.FlaggedPost, error) {
	ids, counts, err := s.countsFor(ctx, models.TargetPost)
	if err != nil {
		return nil, err
	}
	posts, err := s.content.PostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.FlaggedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, models.FlaggedPost{Post: p, ReportCount: counts[p.ID]})
	}
	return out, nil
}

func (s *ModerationService) flaggedComments(ctx context.Context) ([]models.FlaggedComment, error) {
	ids, counts, err := s.countsFor(ctx, models.TargetComment)
	if err != nil {
		return nil, err
	}
	comments, err := s.content.CommentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.FlaggedComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.FlaggedComment{Comment: c, ReportCount: counts[c.ID]})
	}
	return out, nil
}
