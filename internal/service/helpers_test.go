package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emilythestrangee/community-board/backend/internal/database"
	"github.com/emilythestrangee/community-board/backend/internal/models"
)

// setupTestDB returns a migrated in-memory database. A single connection
// keeps every goroutine on the same sqlite instance.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func testRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Username: name, Email: name + "@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, authorID int, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		Slug:      fmt.Sprintf("post-%d-%d", authorID, createdAt.UnixNano()),
		Title:     "A post",
		Body:      "Body",
		Language:  models.LanguageEnglish,
		Type:      models.PostTypeProblem,
		AuthorID:  authorID,
		Published: true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func createComment(t *testing.T, db *gorm.DB, authorID, postID int, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		Body:      "a comment",
		Language:  models.LanguageEnglish,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}

func netVotes(t *testing.T, db *gorm.DB, postID int) int {
	t.Helper()
	var post models.Post
	require.NoError(t, db.Select("net_votes").Take(&post, postID).Error)
	return post.NetVotes
}

func voteRows(t *testing.T, db *gorm.DB, postID int) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Vote{}).Where("post_id = ?", postID).Count(&count).Error)
	return count
}
