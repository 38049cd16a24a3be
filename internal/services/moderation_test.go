package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func moderationServer(t *testing.T, status int, classes map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))

		var req moderationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Text)
		assert.Equal(t, "en", req.Language)

		w.WriteHeader(status)
		if classes != nil {
			json.NewEncoder(w).Encode(moderationResponse{ModerationClasses: classes})
		}
	}))
}

func TestModerationCheckAccepts(t *testing.T) {
	srv := moderationServer(t, http.StatusOK, map[string]float64{
		"sexual":  0.01,
		"violent": 0.05,
		"toxic":   0.1, // at the threshold, not above it
	})
	defer srv.Close()

	client := NewModerationClient(srv.URL, "test-key", zap.NewNop())
	assert.NoError(t, client.Check(context.Background(), "a perfectly fine post"))
}

func TestModerationCheckRejectsAboveThreshold(t *testing.T) {
	srv := moderationServer(t, http.StatusOK, map[string]float64{
		"sexual":  0.02,
		"violent": 0.45,
		"toxic":   0.3,
	})
	defer srv.Close()

	client := NewModerationClient(srv.URL, "test-key", zap.NewNop())
	err := client.Check(context.Background(), "something nasty")

	var rejected *ValidationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, map[string]float64{"violent": 0.45, "toxic": 0.3}, rejected.Scores)
	assert.Contains(t, rejected.Error(), "violent")
}

func TestModerationCheckFailsClosedOnEmptyScores(t *testing.T) {
	srv := moderationServer(t, http.StatusOK, map[string]float64{})
	defer srv.Close()

	client := NewModerationClient(srv.URL, "test-key", zap.NewNop())
	err := client.Check(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrModerationUnavailable)
}

func TestModerationCheckFailsClosedOnNon200(t *testing.T) {
	srv := moderationServer(t, http.StatusBadGateway, nil)
	defer srv.Close()

	client := NewModerationClient(srv.URL, "test-key", zap.NewNop())
	err := client.Check(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrModerationUnavailable)
}

func TestModerationCheckFailsClosedWhenUnreachable(t *testing.T) {
	srv := moderationServer(t, http.StatusOK, nil)
	srv.Close()

	client := NewModerationClient(srv.URL, "test-key", zap.NewNop())
	err := client.Check(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrModerationUnavailable)
}
