package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"playlistwatch/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestSendAndGetUpdates(t *testing.T) {
	telemetry.SetupForTesting(t, "lib/telegram")

	var sentBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTEST_TOKEN/sendMessage":
			err := json.NewDecoder(r.Body).Decode(&sentBody)
			require.NoError(t, err)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true,"result":{}}`))
		case "/botTEST_TOKEN/getUpdates":
			require.Equal(t, "7", r.URL.Query().Get("offset"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":"/list","chat":{"id":12345}}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(Options{Token: "TEST_TOKEN", BaseUrl: server.URL})

	err := client.Send(context.Background(), "12345", "hola")
	require.NoError(t, err)
	require.Equal(t, "12345", sentBody["chat_id"])
	require.Equal(t, "hola", sentBody["text"])

	updates, err := client.GetUpdates(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, int64(7), updates[0].UpdateId)
	require.Equal(t, "/list", updates[0].Message.Text)
	require.Equal(t, int64(12345), updates[0].Message.Chat.Id)
}

func TestSendApiError(t *testing.T) {
	telemetry.SetupForTesting(t, "lib/telegram")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "TEST_TOKEN", BaseUrl: server.URL})
	err := client.Send(context.Background(), "0", "hola")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}
