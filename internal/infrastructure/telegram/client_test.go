package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottesttoken/getUpdates", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 100, body["offset"])

		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42},"text":"/start"}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "testtoken", time.Second)
	updates, err := c.GetUpdates(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.EqualValues(t, 100, updates[0].UpdateID)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.EqualValues(t, 42, updates[0].Message.Chat.ID)
}

func TestSendHTMLWithButton(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottesttoken/sendMessage", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "HTML", body["parse_mode"])
		assert.Contains(t, body, "reply_markup")

		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "testtoken", time.Second)
	err := c.SendHTML(context.Background(), 42, "<code>12345</code>", &domain.LinkButton{
		Label: "Kontakt SUPPORT",
		URL:   "https://t.me/aleksa_asf01",
	})
	assert.NoError(t, err)
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "testtoken", time.Second)
	err := c.SendText(context.Background(), 42, "hi")
	assert.ErrorContains(t, err, "chat not found")
}
