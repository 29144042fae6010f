package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", "re_test", "Propale <noreply@propale.co>")
	id, err := c.Send(context.Background(), Message{
		To:      []string{"client@example.com"},
		Subject: "Your proposal",
		HTML:    "<p>Hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)
	assert.Equal(t, "Propale <noreply@propale.co>", got["from"])
	assert.Equal(t, "Your proposal", got["subject"])
	assert.Equal(t, []interface{}{"client@example.com"}, got["to"])
}

func TestClient_SendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "re_test", "noreply@propale.co").Send(context.Background(), Message{To: []string{"x"}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid to")
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := New("http://localhost", "", "noreply@propale.co").Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
