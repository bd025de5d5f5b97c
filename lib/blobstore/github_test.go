package blobstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// a minimal fake of the GitHub contents API, enough for the store's
// Get/Put/List surface
func newFakeContentsAPI(t *testing.T) (*httptest.Server, map[string]string) {
	files := map[string]string{}
	revisions := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/contents/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/repos/owner/repo/contents/"):]

		switch r.Method {
		case http.MethodGet:
			if content, ok := files[key]; ok {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{
					"type":    "file",
					"name":    key,
					"sha":     "sha-of-" + key,
					"content": content,
				})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			var body struct {
				Content string `json:"content"`
				Sha     string `json:"sha"`
			}
			err := json.NewDecoder(r.Body).Decode(&body)
			require.NoError(t, err)

			if _, exists := files[key]; exists && body.Sha != "sha-of-"+key {
				w.WriteHeader(http.StatusConflict)
				return
			}
			files[key] = body.Content
			revisions++
			w.WriteHeader(http.StatusCreated)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, files
}

func TestGitHubGetPut(t *testing.T) {
	server, files := newFakeContentsAPI(t)
	store := NewGitHub(GitHubOptions{
		Owner:   "owner",
		Repo:    "repo",
		Token:   "test-token",
		BaseUrl: server.URL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.Get(ctx, "playlists/42.txt")
	require.ErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, "playlists/42.txt", []byte("https://example.com/p"), "")
	require.NoError(t, err)
	require.Contains(t, files, "playlists/42.txt")

	obj, err := store.Get(ctx, "playlists/42.txt")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/p", string(obj.Data))
	require.Equal(t, "sha-of-playlists/42.txt", obj.Revision)

	// overwrite without a revision rediscovers the sha
	err = store.Put(ctx, "playlists/42.txt", []byte("changed"), "")
	require.NoError(t, err)

	err = store.Put(ctx, "playlists/42.txt", []byte("stale"), "bad-sha")
	require.ErrorIs(t, err, ErrRevisionMismatch)
}

func TestGitHubDecodesPaddedBase64(t *testing.T) {
	server, files := newFakeContentsAPI(t)
	// the real API wraps base64 at 60 columns with newlines
	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	files["x.txt"] = encoded[:4] + "\n" + encoded[4:]

	store := NewGitHub(GitHubOptions{
		Owner: "owner", Repo: "repo", BaseUrl: server.URL,
	})

	obj, err := store.Get(context.Background(), "x.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(obj.Data))
}
