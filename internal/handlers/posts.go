package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/service"
)

const excerptLength = 150

type PostHandler struct {
	db    *gorm.DB
	votes *service.VoteService
	log   *logger.Logger
}

func NewPostHandler(db *gorm.DB, votes *service.VoteService, log *logger.Logger) *PostHandler {
	return &PostHandler{db: db, votes: votes, log: log}
}

// GetPosts returns published posts, newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Where("published = ?", true)
	if lang := c.Query("language"); lang != "" {
		query = query.Where("language = ?", lang)
	}
	if postType := c.Query("type"); postType != "" {
		query = query.Where("type = ?", postType)
	}

	posts := []models.Post{}
	if err := query.Order("created_at desc").Find(&posts).Error; err != nil {
		h.log.Error("error fetching posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post by numeric id or slug.
func (h *PostHandler) GetPost(c *gin.Context) {
	ref := c.Param("id")
	query := h.db.WithContext(c.Request.Context()).Preload("User")
	if id, err := strconv.Atoi(ref); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", ref)
	}

	var post models.Post
	if err := query.Take(&post).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.log.Error("error fetching post", "ref", ref, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	authorID, ok := requireUser(c)
	if !ok {
		return
	}

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if input.Title == "" || input.Body == "" || input.Language == "" || input.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if input.Language != models.LanguageEnglish && input.Language != models.LanguageBangla {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid language"})
		return
	}
	if input.Type != models.PostTypeProblem && input.Type != models.PostTypeSharing {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post type"})
		return
	}

	post := models.Post{
		Slug:      newSlug(input.Title),
		Title:     input.Title,
		Body:      input.Body,
		Excerpt:   excerpt(input.Body),
		Language:  input.Language,
		Type:      input.Type,
		AuthorID:  authorID,
		NetVotes:  0,
		Published: true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
		h.log.Error("error creating post", "author_id", authorID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": post.ID, "slug": post.Slug})
}

// VotePost casts, switches or retracts the caller's vote (PROTECTED - requires authentication)
func (h *PostHandler) VotePost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Vote == nil {
		respondError(c, models.NewInvalidRequestError("Invalid vote value"))
		return
	}

	postID, ok := parseID(c, "id")
	if !ok {
		respondError(c, models.NewNotFoundError("Post"))
		return
	}

	result, err := h.votes.SubmitVote(c.Request.Context(), postID, userID, *input.Vote)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"netVotes": result.NetVotes,
		"vote":     result.State.Value(),
	})
}

// GetMyVote returns the caller's current vote on a post.
func (h *PostHandler) GetMyVote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		respondError(c, models.NewNotFoundError("Post"))
		return
	}

	state, err := h.votes.CurrentVote(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": state.Value()})
}

// newSlug lowercases the title, joins word runs with dashes and appends a
// short random suffix so equal titles do not collide.
func newSlug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		base = "post"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return base + "-" + suffix
}

func excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= excerptLength {
		return body
	}
	return string(runes[:excerptLength]) + "..."
}
