package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"stremsync/internal/library"
)

const testAuthKey = "test-key"

// fakeStremio serves the API slice the CLI touches: the datastore and
// addon-collection calls under /api, and one meta addon under /addon.
type fakeStremio struct {
	mu       sync.Mutex
	baseURL  string
	items    map[string]*library.Item
	metas    map[string][]byte
	puts     int
	failPuts bool
}

func newFakeStremio() *fakeStremio {
	return &fakeStremio{
		items: make(map[string]*library.Item),
		metas: make(map[string][]byte),
	}
}

func (f *fakeStremio) setBaseURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseURL = url
}

func (f *fakeStremio) seedItem(item *library.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
}

func (f *fakeStremio) storedItem(id string) *library.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeStremio) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *fakeStremio) setFailPuts(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPuts = fail
}

func (f *fakeStremio) setMeta(mediaType, id string, payload any) {
	body, err := json.Marshal(map[string]any{"meta": payload})
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metas[mediaType+"/"+id] = body
}

func (f *fakeStremio) deleteMeta(mediaType, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.metas, mediaType+"/"+id)
}

func (f *fakeStremio) handleAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthKey    string          `json:"authKey"`
		Collection string          `json:"collection"`
		All        bool            `json:"all"`
		IDs        []string        `json:"ids"`
		Changes    []*library.Item `json:"changes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AuthKey != testAuthKey {
		writeAPIError(w, "session does not exist")
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/") {
	case "datastoreMeta":
		f.mu.Lock()
		refs := make([][]any, 0, len(f.items))
		for id, item := range f.items {
			refs = append(refs, []any{id, item.MTime.UnixMilli()})
		}
		f.mu.Unlock()
		writeResult(w, refs)
	case "datastoreGet":
		f.mu.Lock()
		items := make([]*library.Item, 0, len(f.items))
		if req.All {
			for _, item := range f.items {
				items = append(items, item)
			}
		} else {
			for _, id := range req.IDs {
				if item, ok := f.items[id]; ok {
					items = append(items, item)
				}
			}
		}
		f.mu.Unlock()
		writeResult(w, items)
	case "datastorePut":
		f.mu.Lock()
		fail := f.failPuts
		if !fail {
			for _, item := range req.Changes {
				f.items[item.ID] = item
			}
			f.puts++
		}
		f.mu.Unlock()
		if fail {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeResult(w, map[string]any{"success": true})
	case "addonCollectionGet":
		f.mu.Lock()
		base := f.baseURL
		f.mu.Unlock()
		writeResult(w, map[string]any{
			"addons": []map[string]any{
				{
					"transportUrl": base + "/addon/manifest.json",
					"manifest": map[string]any{
						"id":         "org.fake.meta",
						"name":       "Fake Meta",
						"resources":  []string{"meta"},
						"types":      []string{"movie", "series"},
						"idPrefixes": []string{"tt"},
					},
				},
			},
			"lastModified": 1700000000000,
		})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeStremio) handleAddon(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/addon/meta/")
	rest = strings.TrimSuffix(rest, ".json")
	mediaType, id, ok := strings.Cut(rest, "/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	body := f.metas[mediaType+"/"+id]
	f.mu.Unlock()
	if body == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func writeAPIError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": 1, "message": message},
	})
}

type cliEnv struct {
	api        *fakeStremio
	server     *httptest.Server
	configPath string
	dataDir    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	api := newFakeStremio()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", api.handleAPI)
	mux.HandleFunc("/addon/", api.handleAddon)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	api.setBaseURL(server.URL)

	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[stremio]\napi_url = %q\nauthkey = %q\n\n[paths]\ndata_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		server.URL, testAuthKey, dataDir,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliEnv{api: api, server: server, configPath: configPath, dataDir: dataDir}
}

func runCLIArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func runCLI(t *testing.T, env *cliEnv, args ...string) (string, string, error) {
	t.Helper()
	return runCLIArgs(t, append([]string{"--config", env.configPath}, args...)...)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func seededItem(id, name, mediaType string, mtimeMillis int64) *library.Item {
	item := library.NewItem(id, name, mediaType, "", "")
	item.SetInLibrary(true)
	item.MTime = library.Timestamp{Time: time.UnixMilli(mtimeMillis).UTC()}
	return item
}

func seriesMeta(id, name string, episodes int) map[string]any {
	videos := make([]map[string]any, 0, episodes)
	for e := 1; e <= episodes; e++ {
		videos = append(videos, map[string]any{
			"id":      fmt.Sprintf("%s:1:%d", id, e),
			"title":   fmt.Sprintf("Episode %d", e),
			"season":  1,
			"episode": e,
		})
	}
	return map[string]any{
		"id":     id,
		"type":   "series",
		"name":   name,
		"videos": videos,
	}
}
