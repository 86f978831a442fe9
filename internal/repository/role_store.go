package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// RoleStore answers capability checks against the roles table.
type RoleStore struct {
	db *gorm.DB
}

func NewRoleStore(db *gorm.DB) *RoleStore {
	return &RoleStore{db: db}
}

func (s *RoleStore) HasRole(ctx context.Context, userID int, role string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Where("user_id = ? AND name = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}

// Grant is idempotent.
func (s *RoleStore) Grant(ctx context.Context, userID int, role string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Role{UserID: userID, Name: role}).Error
}

func (s *RoleStore) Revoke(ctx context.Context, userID int, role string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, role).
		Delete(&models.Role{}).Error
}

// SeedModerators grants the moderator role to every configured user id.
func (s *RoleStore) SeedModerators(ctx context.Context, userIDs []int) error {
	for _, id := range userIDs {
		if err := s.Grant(ctx, id, models.RoleModerator); err != nil {
			return err
		}
	}
	return nil
}
