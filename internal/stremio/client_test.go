package stremio_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stremsync/internal/stremio"
)

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return payload
}

func TestPostInjectsAuthKeyAndUnwrapsResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/datastoreMeta" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		payload := decodeBody(t, r)
		if payload["authKey"] != "secret" {
			t.Fatalf("authKey = %v, want secret", payload["authKey"])
		}
		if payload["collection"] != "libraryItem" {
			t.Fatalf("collection = %v", payload["collection"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"value": 42}}`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "secret")
	var out struct {
		Value int `json:"value"`
	}
	err := client.Post(context.Background(), "datastoreMeta", map[string]any{"collection": "libraryItem"}, &out)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("value = %d, want 42", out.Value)
	}
}

func TestPostAnonymousLeavesAuthKeyOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeBody(t, r)
		if _, ok := payload["authKey"]; ok {
			t.Fatal("anonymous request should not carry an authKey")
		}
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "")
	if err := client.Post(context.Background(), "addonCollectionGet", nil, nil); err != nil {
		t.Fatalf("Post: %v", err)
	}
}

func TestPostStatusErrorWrapsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "key")
	err := client.Post(context.Background(), "datastoreMeta", nil, nil)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should name the status: %v", err)
	}
}

func TestPostAPIErrorWrapsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": 1, "message": "session does not exist"}}`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "key")
	err := client.Post(context.Background(), "datastoreGet", nil, nil)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if !strings.Contains(err.Error(), "session does not exist") {
		t.Fatalf("error should carry the api message: %v", err)
	}
}

func TestPostMalformedBodyWrapsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<!DOCTYPE html>`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "key")
	err := client.Post(context.Background(), "datastoreMeta", nil, nil)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestPostMissingResultWithOutWrapsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New(server.URL, "key")
	var out []string
	err := client.Post(context.Background(), "datastoreMeta", nil, &out)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestPostNetworkErrorWrapsTransport(t *testing.T) {
	client := stremio.New("https://api.example", "key",
		stremio.WithHTTPClient(failingDoer{err: errors.New("connection refused")}))
	err := client.Post(context.Background(), "datastoreMeta", nil, nil)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestGetStripsManifestSuffix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meta/series/tt0903747.json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"meta": {"id": "tt0903747"}}`))
	}))
	t.Cleanup(server.Close)

	client := stremio.New("", "")
	var out struct {
		Meta struct {
			ID string `json:"id"`
		} `json:"meta"`
	}
	url := server.URL + "/manifest.json" + "/meta/series/tt0903747.json"
	if err := client.Get(context.Background(), url, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Meta.ID != "tt0903747" {
		t.Fatalf("meta id = %q", out.Meta.ID)
	}
}

func TestGetStatusErrorWrapsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := stremio.New("", "")
	err := client.Get(context.Background(), server.URL+"/meta/movie/tt1.json", nil)
	if !errors.Is(err, stremio.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
