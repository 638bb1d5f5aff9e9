// Package testutil provides shared test helpers for setting up base
// directories and fake chat-completion endpoints.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasklog/internal/config"
	"tasklog/internal/storage"
	"tasklog/internal/taskstore"
)

// TestDir creates a temporary base directory with a storage provider.
func TestDir(t *testing.T) *storage.Dir {
	t.Helper()
	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// InitDir creates a temporary base directory already holding a default
// config file and an empty task log, as the init command would leave it.
func InitDir(t *testing.T) *storage.Dir {
	t.Helper()
	dir := TestDir(t)
	if err := config.NewStore(dir).Reset(); err != nil {
		t.Fatal(err)
	}
	if err := taskstore.NewStore(dir).Save(nil); err != nil {
		t.Fatal(err)
	}
	return dir
}

// FakeChat starts a chat-completion endpoint that replies with the given
// content for every request. The server is closed on test cleanup.
func FakeChat(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}
