package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"code-inserter/api"
	"code-inserter/editor"
	"code-inserter/inserter"
	"code-inserter/logging"
	"code-inserter/panel"
	"code-inserter/settings"
	"code-inserter/snippet"
)

type testEnv struct {
	srv  *httptest.Server
	ctrl *panel.Controller
	ws   *editor.Workspace
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := editor.NewWorkspace(root, 8)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	log := logging.Discard()
	st := snippet.NewStore(settings.NewFileSettings(filepath.Join(dir, "settings.json"), ""), log)
	ctrl := panel.New(context.Background(), st, inserter.New(ws, log), ws, log)

	staticFS := fstest.MapFS{
		"index.html": {Data: []byte("<html></html>")},
	}
	srv := httptest.NewServer(api.RegisterRoutes(ctrl, ws, staticFS, log))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, ctrl: ctrl, ws: ws}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeList(t *testing.T, resp *http.Response) []snippet.Snippet {
	t.Helper()
	var body struct {
		Snippets []snippet.Snippet `json:"snippets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Snippets
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected html content-type, got %q", ct)
	}
}

func TestListSnippetsEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/api/snippets", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content-type, got %q", ct)
	}
	if list := decodeList(t, resp); list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %#v", list)
	}
}

func TestAddSnippet201(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodPost, "/api/snippets", `{"name":"greet","code":"console.log('hi')"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var s snippet.Snippet
	json.NewDecoder(resp.Body).Decode(&s)
	if s.ID == "" || s.Name != "greet" || s.IsInserted {
		t.Fatalf("unexpected snippet %+v", s)
	}

	list := decodeList(t, env.do(t, http.MethodGet, "/api/snippets", ""))
	if len(list) != 1 || list[0].ID != s.ID {
		t.Fatalf("expected the new snippet in the list, got %+v", list)
	}
}

func TestAddSnippetValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, body := range []string{`{"name":"","code":"x"}`, `{"name":"n","code":"  "}`, "not-json"} {
		resp := env.do(t, http.MethodPost, "/api/snippets", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestPutSnippets(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodPut, "/api/snippets", `{"snippets":[{"id":"p1","name":"Hello","code":"world"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	list := decodeList(t, env.do(t, http.MethodGet, "/api/snippets", ""))
	if len(list) != 1 || list[0].ID != "p1" {
		t.Fatalf("expected snippet p1, got %+v", list)
	}
}

func TestPutSnippetsBadBody(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, body := range []string{
		"not-json",
		`{}`,
		`{"snippets":[{"id":"a","name":"A","code":"x"},{"id":"a","name":"B","code":"y"}]}`,
		`{"snippets":[{"id":"has space","name":"A","code":"x"}]}`,
	} {
		resp := env.do(t, http.MethodPut, "/api/snippets", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestDeleteSnippet(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPut, "/api/snippets", `{"snippets":[{"id":"p1","name":"A","code":"x"}]}`)

	if resp := env.do(t, http.MethodDelete, "/api/snippets/p1", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodDelete, "/api/snippets/p1", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestInsertAndRetract(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.ts": "one\ntwo\nthree\n"})
	env.do(t, http.MethodPut, "/api/snippets", `{"snippets":[{"id":"p1","name":"A","code":"x()"}]}`)

	// No active editor yet.
	if resp := env.do(t, http.MethodPost, "/api/snippets/p1/insert", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 without active editor, got %d", resp.StatusCode)
	}

	if resp := env.do(t, http.MethodPut, "/api/editor", `{"filePath":"a.ts","line":2}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("focus editor: expected 200, got %d", resp.StatusCode)
	}

	resp := env.do(t, http.MethodPost, "/api/snippets/p1/insert", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insert: expected 200, got %d", resp.StatusCode)
	}
	var s snippet.Snippet
	json.NewDecoder(resp.Body).Decode(&s)
	if !s.IsInserted || s.LastInsertedAt == nil || s.LastInsertedAt.Positions[0] != 2 {
		t.Fatalf("unexpected snippet after insert: %+v", s)
	}

	if resp := env.do(t, http.MethodPost, "/api/snippets/p1/insert", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second insert: expected 409, got %d", resp.StatusCode)
	}

	if resp := env.do(t, http.MethodPost, "/api/snippets/p1/retract", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("retract: expected 200, got %d", resp.StatusCode)
	}
	data, _ := os.ReadFile(filepath.Join(env.ws.Root(), "a.ts"))
	if string(data) != "one\ntwo\nthree\n" {
		t.Fatalf("document not restored: %q", data)
	}

	if resp := env.do(t, http.MethodPost, "/api/snippets/p1/retract", ""); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second retract: expected 409, got %d", resp.StatusCode)
	}
}

func TestInsertUnknownSnippet(t *testing.T) {
	env := newTestEnv(t, nil)
	if resp := env.do(t, http.MethodPost, "/api/snippets/ghost/insert", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestInsertWithCodeOverride(t *testing.T) {
	env := newTestEnv(t, map[string]string{"a.ts": "one\n"})
	env.do(t, http.MethodPut, "/api/snippets", `{"snippets":[{"id":"p1","name":"A","code":"stored()"}]}`)
	env.do(t, http.MethodPut, "/api/editor", `{"filePath":"a.ts","line":1}`)

	if resp := env.do(t, http.MethodPost, "/api/snippets/p1/insert", `{"code":"override()"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := os.ReadFile(filepath.Join(env.ws.Root(), "a.ts"))
	if !strings.Contains(string(data), "\noverride()\n") {
		t.Fatalf("expected override code in document, got %q", data)
	}
}
