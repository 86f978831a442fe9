package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// ContentStore reads posts and comments for report validation and the moderation view.
type ContentStore struct {
	db *gorm.DB
}

func NewContentStore(db *gorm.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) Exists(ctx context.Context, targetType string, id int) (bool, error) {
	var count int64
	var model interface{}
	switch targetType {
	case models.TargetPost:
		model = &models.Post{}
	default:
		model = &models.Comment{}
	}
	err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// PostsByIDs returns the posts newest first.
func (s *ContentStore) PostsByIDs(ctx context.Context, ids []int) ([]models.Post, error) {
	posts := []models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("created_at desc, id desc").
		Find(&posts).Error
	return posts, err
}

// CommentsByIDs returns the comments newest first.
func (s *ContentStore) CommentsByIDs(ctx context.Context, ids []int) ([]models.Comment, error) {
	comments := []models.Comment{}
	if len(ids) == 0 {
		return comments, nil
	}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("created_at desc, id desc").
		Find(&comments).Error
	return comments, err
}
