package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotorflop/internal/tally"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{NewNotFoundError("Post", 1), http.StatusNotFound},
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewUnauthorizedError("no"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewConflictError("dup"), http.StatusConflict},
		{NewStoreUnavailableError(errors.New("conn refused")), http.StatusServiceUnavailable},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewNotFoundError("Post", 2)), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestRespondWithError_HidesStoreDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		err := NewStoreUnavailableError(errors.New("dial tcp 10.0.0.1:5432"))
		return RespondWithError(c, StatusFor(err), err)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, CodeStoreUnavailable, out.Code)
	assert.Empty(t, out.Details)
}

func TestPost_SetCountsKeepsTotal(t *testing.T) {
	p := &Post{}
	p.SetCounts(tally.Counts{Yes: 4, No: 1, Total: 0})
	assert.Equal(t, int64(5), p.TotalCount)
	assert.Equal(t, tally.Counts{Yes: 4, No: 1, Total: 5}, p.Counts())
}

func TestParseReportStatus(t *testing.T) {
	s, ok := ParseReportStatus(" Resolved ")
	assert.True(t, ok)
	assert.Equal(t, ReportStatusResolved, s)

	_, ok = ParseReportStatus("closed")
	assert.False(t, ok)
}
