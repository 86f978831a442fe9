package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := NewStoreError("Failed to update vote", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindStoreFailure, KindOf(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, "Failed to update vote", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection reset")

	assert.Equal(t, KindStoreFailure, KindOf(cause))
	assert.Equal(t, "An unexpected error occurred", PublicMessage(cause))
	assert.Equal(t, "Comment not found", NewNotFoundError("Comment").Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewUnauthenticatedError(), http.StatusUnauthorized},
		{NewUnauthorizedError(), http.StatusUnauthorized},
		{NewNotFoundError("Post"), http.StatusNotFound},
		{NewInvalidRequestError("Invalid vote value"), http.StatusBadRequest},
		{NewSelfVoteError(), http.StatusForbidden},
		{NewStoreError("x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(KindOf(tt.err)))
		})
	}
}

func TestCreateReportRequest_TargetID(t *testing.T) {
	tests := []struct {
		body string
		want TargetID
	}{
		{`{"targetId": 12}`, 12},
		{`{"targetId": "12"}`, 12},
		{`{"targetId": " 7 "}`, 7},
		{`{"targetId": ""}`, 0},
		{`{"targetId": null}`, 0},
		{`{"targetId": "abc"}`, 0},
		{`{"targetId": -3}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req CreateReportRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.TargetID)
		})
	}
}

func TestFlaggedPostJSON(t *testing.T) {
	item := FlaggedPost{Post: Post{ID: 3, Title: "t", NetVotes: -2}, ReportCount: 4}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, float64(3), out["id"])
	assert.Equal(t, float64(4), out["report_count"])
	assert.Equal(t, float64(-2), out["net_votes"])
}
