package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emilythestrangee/community-board/backend/internal/config"
	"github.com/emilythestrangee/community-board/backend/internal/database"
	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/repository"
)

type sqliteService struct {
	db *gorm.DB
}

func (s *sqliteService) Health() map[string]string {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		return map[string]string{"status": "down"}
	}
	return map[string]string{"status": "up"}
}

func (s *sqliteService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *sqliteService) GetDB() *gorm.DB { return s.db }

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	svc := &sqliteService{db: db}
	t.Cleanup(func() { _ = svc.Close() })

	srv, err := New(context.Background(), cfg, logger.Nop(), svc)
	require.NoError(t, err)
	return srv, db
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		AllowedOrigins:   "http://localhost:3000",
		JWTSecret:        "server-test-secret",
		ModeratorUserIDs: "7",
		AdminUserID:      "9",
		FlagMinReports:   1,
		VoteMaxRetries:   2,
	}
}

func TestNew_SeedsModerators(t *testing.T) {
	_, db := newTestServer(t, testConfig())
	roles := repository.NewRoleStore(db)

	for _, id := range []int{7, 9} {
		ok, err := roles.HasRole(context.Background(), id, models.RoleModerator)
		require.NoError(t, err)
		assert.True(t, ok, "user %d should be a moderator", id)
	}
}

func TestNew_RejectsBadModeratorIDs(t *testing.T) {
	cfg := testConfig()
	cfg.ModeratorUserIDs = "abc"

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	_, err = New(context.Background(), cfg, logger.Nop(), &sqliteService{db: db})
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	router := srv.RegisterRoutes()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		contains string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"up"`},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "go_goroutines"},
		{"posts list", http.MethodGet, "/api/posts", "", http.StatusOK, "[]"},
		{"vote requires auth", http.MethodPost, "/api/posts/1/vote", `{"vote":1}`, http.StatusUnauthorized, "Authentication required"},
		{"report requires auth", http.MethodPost, "/api/admin/flags", `{}`, http.StatusUnauthorized, "Authentication required"},
		{"flags require moderator", http.MethodGet, "/api/admin/flags", "", http.StatusUnauthorized, `"Unauthorized"`},
		{"me requires auth", http.MethodGet, "/api/me", "", http.StatusUnauthorized, "Authentication required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestHTTPServer(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	httpServer := srv.HTTPServer()
	assert.Equal(t, "0.0.0.0:0", httpServer.Addr)
	assert.NotNil(t, httpServer.Handler)
}
