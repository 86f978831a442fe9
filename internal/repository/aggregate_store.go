package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// AggregateStore owns posts.net_votes.
type AggregateStore struct {
	db *gorm.DB
}

func NewAggregateStore(db *gorm.DB) *AggregateStore {
	return &AggregateStore{db: db}
}

func (s *AggregateStore) WithTx(tx *gorm.DB) *AggregateStore {
	return &AggregateStore{db: tx}
}

// LockPost loads the aggregate-relevant projection of a post and, inside a
// transaction, holds a row lock on it. Returns gorm.ErrRecordNotFound when absent.
func (s *AggregateStore) LockPost(ctx context.Context, postID int) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "author_id", "net_votes").
		Where("id = ?", postID).
		Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ApplyDelta adjusts net_votes in the store with a single UPDATE and returns the new total.
func (s *AggregateStore) ApplyDelta(ctx context.Context, postID, delta int) (int, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("net_votes", gorm.Expr("net_votes + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return s.NetVotes(ctx, postID)
}

func (s *AggregateStore) NetVotes(ctx context.Context, postID int) (int, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Select("net_votes").
		Where("id = ?", postID).
		Take(&post).Error
	if err != nil {
		return 0, err
	}
	return post.NetVotes, nil
}
