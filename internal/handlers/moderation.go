package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/community-board/backend/internal/middleware"
	"github.com/emilythestrangee/community-board/backend/internal/models"
	"github.com/emilythestrangee/community-board/backend/internal/service"
)

// ModerationHandler serves report intake and the moderation queue.
type ModerationHandler struct {
	reports    *service.ReportService
	moderation *service.ModerationService
	votes      *service.VoteService
}

func NewModerationHandler(reports *service.ReportService, moderation *service.ModerationService, votes *service.VoteService) *ModerationHandler {
	return &ModerationHandler{reports: reports, moderation: moderation, votes: votes}
}

// SubmitReport appends a report against a post or comment.
func (h *ModerationHandler) SubmitReport(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input models.CreateReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, models.NewInvalidRequestError("Missing target type or ID"))
		return
	}

	_, err := h.reports.SubmitReport(c.Request.Context(), service.SubmitReportInput{
		TargetType:     input.TargetType,
		TargetID:       int(input.TargetID),
		ReporterUserID: userID,
		Reason:         input.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted successfully"})
}

// GetFlagged lists reported content for moderators.
func (h *ModerationHandler) GetFlagged(c *gin.Context) {
	callerID, _ := middleware.UserID(c)

	flagged, err := h.moderation.ListFlagged(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flagged)
}

// AuditVotes compares a post's stored score with its vote ledger.
func (h *ModerationHandler) AuditVotes(c *gin.Context) {
	callerID, _ := middleware.UserID(c)
	if err := h.moderation.RequireModerator(c.Request.Context(), callerID); err != nil {
		respondError(c, err)
		return
	}

	postID, ok := parseID(c, "id")
	if !ok {
		respondError(c, models.NewNotFoundError("Post"))
		return
	}

	audit, err := h.votes.Audit(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, audit)
}
