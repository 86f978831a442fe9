package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/middleware"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/service"
)

// Services are the engine components the handlers delegate to.
type Services struct {
	Votes      *service.VoteService
	Reports    *service.ReportService
	Moderation *service.ModerationService
}

// Handler combines all handler types
type Handler struct {
	Auth       *AuthHandler
	Post       *PostHandler
	Comment    *CommentHandler
	Moderation *ModerationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, auth *middleware.Auth, svc Services, log *logger.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(db, auth, log),
		Post:       NewPostHandler(db, svc.Votes, log),
		Comment:    NewCommentHandler(db, log),
		Moderation: NewModerationHandler(svc.Reports, svc.Moderation, svc.Votes),
	}
}

// respondError writes {"error": msg} with the status for the error's kind.
// Store details stay in the log.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	if kind == models.KindStoreFailure {
		_ = c.Error(err)
	}
	c.JSON(models.HTTPStatus(kind), gin.H{"error": models.PublicMessage(err)})
}

func parseID(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func requireUser(c *gin.Context) (int, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return 0, false
	}
	return userID, true
}
