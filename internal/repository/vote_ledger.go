// Package repository provides the durable stores behind the vote and report engine.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// VoteLedger holds at most one vote row per (post, user).
type VoteLedger struct {
	db *gorm.DB
}

func NewVoteLedger(db *gorm.DB) *VoteLedger {
	return &VoteLedger{db: db}
}

// WithTx returns a ledger bound to an open transaction.
func (l *VoteLedger) WithTx(tx *gorm.DB) *VoteLedger {
	return &VoteLedger{db: tx}
}

// Get returns the live vote for the pair, or nil when the user has not voted.
func (l *VoteLedger) Get(ctx context.Context, postID, userID int) (*models.Vote, error) {
	return l.get(l.db.WithContext(ctx), postID, userID)
}

// GetForUpdate is Get with a row lock held until the surrounding transaction ends.
func (l *VoteLedger) GetForUpdate(ctx context.Context, postID, userID int) (*models.Vote, error) {
	return l.get(l.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), postID, userID)
}

func (l *VoteLedger) get(db *gorm.DB, postID, userID int) (*models.Vote, error) {
	var vote models.Vote
	err := db.Where("post_id = ? AND user_id = ?", postID, userID).Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (l *VoteLedger) Insert(ctx context.Context, vote *models.Vote) error {
	return l.db.WithContext(ctx).Create(vote).Error
}

func (l *VoteLedger) UpdateValue(ctx context.Context, voteID, value int) error {
	return l.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("id = ?", voteID).
		Update("value", value).Error
}

func (l *VoteLedger) Delete(ctx context.Context, voteID int) error {
	return l.db.WithContext(ctx).Delete(&models.Vote{}, voteID).Error
}

// SumForPost adds up every live vote value for the post.
func (l *VoteLedger) SumForPost(ctx context.Context, postID int) (int, error) {
	var sum int64
	err := l.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&sum).Error
	return int(sum), err
}

// CountForPost returns the number of live vote rows for the post.
func (l *VoteLedger) CountForPost(ctx context.Context, postID int) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.Vote{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
