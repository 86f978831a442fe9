package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
)

type CommentHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentHandler(db *gorm.DB, log *logger.Logger) *CommentHandler {
	return &CommentHandler{db: db, log: log}
}

// GetComments returns all comments for a post
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comments := []models.Comment{}
	if err := h.db.WithContext(c.Request.Context()).
		Where("post_id = ?", postID).
		Preload("User").
		Order("created_at desc").
		Find(&comments).Error; err != nil {
		h.log.Error("error fetching comments", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	authorID, ok := requireUser(c)
	if !ok {
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment body is required"})
		return
	}
	if input.Language == "" {
		input.Language = models.LanguageEnglish
	}
	if input.Language != models.LanguageEnglish && input.Language != models.LanguageBangla {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid language"})
		return
	}

	postID, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	if err := h.db.WithContext(c.Request.Context()).Select("id").Take(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Error("error loading post", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	comment := models.Comment{
		Body:     strings.TrimSpace(input.Body),
		Language: input.Language,
		PostID:   post.ID,
		AuthorID: authorID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&comment).Error; err != nil {
		h.log.Error("error creating comment", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.db.WithContext(c.Request.Context()).Preload("User").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, comment)
}
