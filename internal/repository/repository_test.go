package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emilythestrangee/community-board/backend/internal/models"
)

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

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Report{},
		&models.Role{},
	))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
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
		Type:      models.PostTypeSharing,
		AuthorID:  authorID,
		Published: true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func TestVoteLedger_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledger := NewVoteLedger(db)

	author := createUser(t, db, "author")
	voter := createUser(t, db, "voter")
	post := createPost(t, db, author.ID, time.Now())

	vote, err := ledger.Get(ctx, post.ID, voter.ID)
	require.NoError(t, err)
	assert.Nil(t, vote)

	require.NoError(t, ledger.Insert(ctx, &models.Vote{PostID: post.ID, UserID: voter.ID, Value: 1}))
	vote, err = ledger.GetForUpdate(ctx, post.ID, voter.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, 1, vote.Value)

	require.NoError(t, ledger.UpdateValue(ctx, vote.ID, -1))
	sum, err := ledger.SumForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, sum)

	require.NoError(t, ledger.Delete(ctx, vote.ID))
	sum, err = ledger.SumForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)

	count, err := ledger.CountForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestVoteLedger_OneRowPerPair(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledger := NewVoteLedger(db)

	author := createUser(t, db, "author")
	voter := createUser(t, db, "voter")
	post := createPost(t, db, author.ID, time.Now())

	require.NoError(t, ledger.Insert(ctx, &models.Vote{PostID: post.ID, UserID: voter.ID, Value: 1}))
	err := ledger.Insert(ctx, &models.Vote{PostID: post.ID, UserID: voter.ID, Value: -1})
	assert.Error(t, err)

	count, err := ledger.CountForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAggregateStore_ApplyDelta(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := NewAggregateStore(db)

	author := createUser(t, db, "author")
	post := createPost(t, db, author.ID, time.Now())

	locked, err := store.LockPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, locked.AuthorID)
	assert.Equal(t, 0, locked.NetVotes)

	total, err := store.ApplyDelta(ctx, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = store.ApplyDelta(ctx, post.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, -1, total)

	_, err = store.ApplyDelta(ctx, 9999, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = store.LockPost(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAggregateStore_ApplyDeltaIsSingleUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewAggregateStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WithArgs(-2, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT (.+) FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"net_votes"}).AddRow(3))

	total, err := store.ApplyDelta(context.Background(), 7, -2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportLedger_CountByTarget(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ledger := NewReportLedger(db)

	author := createUser(t, db, "author")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	busy := createPost(t, db, author.ID, time.Now())
	quiet := createPost(t, db, author.ID, time.Now().Add(time.Second))

	for _, reporter := range []int{alice.ID, alice.ID, bob.ID} {
		require.NoError(t, ledger.Append(ctx, &models.Report{
			TargetType: models.TargetPost, TargetID: busy.ID, ReporterUserID: reporter, Reason: "spam",
		}))
	}
	require.NoError(t, ledger.Append(ctx, &models.Report{
		TargetType: models.TargetPost, TargetID: quiet.ID, ReporterUserID: bob.ID, Reason: "spam",
	}))
	require.NoError(t, ledger.Append(ctx, &models.Report{
		TargetType: models.TargetComment, TargetID: busy.ID, ReporterUserID: bob.ID, Reason: "spam",
	}))

	tests := []struct {
		name     string
		min      int
		distinct bool
		want     map[int]int64
	}{
		{"every report counts", 1, false, map[int]int64{busy.ID: 3, quiet.ID: 1}},
		{"threshold", 2, false, map[int]int64{busy.ID: 3}},
		{"distinct reporters", 1, true, map[int]int64{busy.ID: 2, quiet.ID: 1}},
		{"distinct with threshold", 3, true, map[int]int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ledger.CountByTarget(ctx, models.TargetPost, tt.min, tt.distinct)
			require.NoError(t, err)
			got := map[int]int64{}
			for _, r := range rows {
				got[r.TargetID] = r.ReportCount
			}
			assert.Equal(t, tt.want, got)
		})
	}

	reports, err := ledger.ListForTarget(ctx, models.TargetPost, busy.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestRoleStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	roles := NewRoleStore(db)

	ok, err := roles.HasRole(ctx, 1, models.RoleModerator)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, roles.SeedModerators(ctx, []int{1, 2}))
	require.NoError(t, roles.SeedModerators(ctx, []int{1}))

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	ok, err = roles.HasRole(ctx, 1, models.RoleModerator)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, roles.Revoke(ctx, 1, models.RoleModerator))
	ok, err = roles.HasRole(ctx, 1, models.RoleModerator)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContentStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	content := NewContentStore(db)

	author := createUser(t, db, "author")
	base := time.Now().Add(-time.Hour)
	older := createPost(t, db, author.ID, base)
	newer := createPost(t, db, author.ID, base.Add(time.Minute))
	comment := models.Comment{Body: "hi", Language: models.LanguageEnglish, AuthorID: author.ID, PostID: older.ID}
	require.NoError(t, db.Create(&comment).Error)

	exists, err := content.Exists(ctx, models.TargetPost, older.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = content.Exists(ctx, models.TargetComment, comment.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = content.Exists(ctx, models.TargetComment, 9999)
	require.NoError(t, err)
	assert.False(t, exists)

	posts, err := content.PostsByIDs(ctx, []int{older.ID, newer.ID})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, "author", posts[0].User.Username)

	empty, err := content.PostsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	comments, err := content.CommentsByIDs(ctx, []int{comment.ID})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hi", comments[0].Body)
}
