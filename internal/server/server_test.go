package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativetop/dativetop-server/internal/model"
	"github.com/dativetop/dativetop-server/internal/registry"
	"github.com/dativetop/dativetop-server/internal/server"
	"github.com/dativetop/dativetop-server/internal/testutil"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := &testutil.DummyLogger{}
	reg, err := registry.NewRegistry(registry.DefaultSeed(), logger)
	require.NoError(t, err)

	cfg := server.DefaultConfig()
	cfg.ListenAddr = ":0"
	cfg.Logger = logger

	s, err := server.NewServer(cfg, reg)
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

func getRegistry(t *testing.T, s http.Handler) model.Registry {
	t.Helper()
	rec := doJSON(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc model.Registry
	decodeJSON(t, rec, &doc)
	return doc
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/", "")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5678")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestServer_CORS_PreflightEveryRoute(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, path := range []string{"/ws", "/metrics", "/swagger/index.html", "/no-such-route"} {
		rec := doJSON(t, s, http.MethodOptions, path, "")
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET", path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

// ─── Get Registry ──────────────────────────────────────────────────────

func TestServer_GetRegistry_Seeded(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	decodeJSON(t, rec, &doc)
	assert.Equal(t, "http://127.0.0.1:5678/", doc["dative-url"])
	assert.Equal(t, "http://127.0.0.1:5679/", doc["old-url"])

	instances, ok := doc["old-instances"].(map[string]any)
	require.True(t, ok)
	require.Len(t, instances, 3)

	assert.Equal(t, map[string]any{
		"name":       "Blackfoot",
		"url":        "http://127.0.0.1:5679/bla",
		"leader":     "https://projects.linguistics.ubc.ca/blaold",
		"state":      "out-of-sync",
		"auto-sync?": false,
	}, instances["http://127.0.0.1:5679/bla"])
	assert.Equal(t, map[string]any{
		"name":       "Okanagan",
		"url":        "http://127.0.0.1:5679/oka",
		"leader":     nil,
		"state":      nil,
		"auto-sync?": false,
	}, instances["http://127.0.0.1:5679/oka"])
	assert.Equal(t, map[string]any{
		"name":       "St'at'imcets",
		"url":        "http://127.0.0.1:5679/sta",
		"leader":     "https://projects.linguistics.ubc.ca/staold",
		"state":      "synced",
		"auto-sync?": true,
	}, instances["http://127.0.0.1:5679/sta"])
}

func TestServer_OtherMethodsServeRegistry(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, method := range []string{http.MethodPost, http.MethodDelete, http.MethodPatch} {
		rec := doJSON(t, s, method, "/", `{"url":"http://127.0.0.1:5679/zzz"}`)
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
	assert.Len(t, getRegistry(t, s).OLDInstances, 3, "only PUT mutates")
}

// ─── Update Instance ───────────────────────────────────────────────────

func TestServer_UpdateInstance_ReplacesExisting(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/", `{"name":"Blackfoot","url":"http://127.0.0.1:5679/bla","auto-sync?":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc model.Registry
	decodeJSON(t, rec, &doc)
	require.Len(t, doc.OLDInstances, 3)

	bla := doc.OLDInstances["http://127.0.0.1:5679/bla"]
	assert.True(t, bla.AutoSync)
	assert.Nil(t, bla.Leader, "fields missing from the update are not merged from the old value")
	assert.Nil(t, bla.State)

	assert.Equal(t, doc, getRegistry(t, s))
}

func TestServer_UpdateInstance_AddsNew(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	before := getRegistry(t, s)

	rec := doJSON(t, s, http.MethodPut, "/", `{"name":"Gitksan","url":"http://127.0.0.1:5679/git","leader":null,"state":null,"auto-sync?":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc model.Registry
	decodeJSON(t, rec, &doc)
	require.Len(t, doc.OLDInstances, 4)
	assert.Equal(t, "Gitksan", doc.OLDInstances["http://127.0.0.1:5679/git"].Name)
	for key, inst := range before.OLDInstances {
		assert.Equal(t, inst, doc.OLDInstances[key])
	}
}

func TestServer_UpdateInstance_InvalidJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	before := getRegistry(t, s)

	for _, body := range []string{`{invalid}`, ``, `{"url": "http://127.0.0.1:5679/bla"`, `[1, 2]`, `{"url":"http://x"} trailing`} {
		rec := doJSON(t, s, http.MethodPut, "/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp map[string]string
		decodeJSON(t, rec, &resp)
		assert.Equal(t, "Bad JSON in request body", resp["error"], body)
	}

	assert.Equal(t, before, getRegistry(t, s))
}

func TestServer_UpdateInstance_MissingURL(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	before := getRegistry(t, s)

	rec := doJSON(t, s, http.MethodPut, "/", `{"name":"nowhere"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp server.ErrorResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "The OLD provided in the update request was not valid", resp.Error)
	assert.Equal(t, before, getRegistry(t, s))
}

func TestServer_UpdateInstance_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	body := `{"name":"Okanagan","url":"http://127.0.0.1:5679/oka","leader":"https://projects.linguistics.ubc.ca/okaold","state":"synced","auto-sync?":true}`

	first := doJSON(t, s, http.MethodPut, "/", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, s, http.MethodPut, "/", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestServer_UpdateInstance_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	body := `{"name":"Sliammon","url":"http://127.0.0.1:5679/sli","leader":"https://projects.linguistics.ubc.ca/sliold","state":"out-of-sync","auto-sync?":true}`

	rec := doJSON(t, s, http.MethodPut, "/", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Instances map[string]json.RawMessage `json:"old-instances"`
	}
	decodeJSON(t, rec, &doc)
	assert.JSONEq(t, body, string(doc.Instances["http://127.0.0.1:5679/sli"]))
}

func TestServer_UpdateInstance_StoresExactlySubmittedFields(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		url  string
		body string
	}{
		"url only": {
			url:  "http://127.0.0.1:5679/new",
			body: `{"url":"http://127.0.0.1:5679/new"}`,
		},
		"unknown field kept, absent fields not filled": {
			url:  "http://127.0.0.1:5679/bla",
			body: `{"name":"X","url":"http://127.0.0.1:5679/bla","auto-sync?":true,"notes":"kept?"}`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t)

			rec := doJSON(t, s, http.MethodPut, "/", tc.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var doc struct {
				Instances map[string]json.RawMessage `json:"old-instances"`
			}
			decodeJSON(t, rec, &doc)
			assert.JSONEq(t, tc.body, string(doc.Instances[tc.url]))

			get := doJSON(t, s, http.MethodGet, "/", "")
			var after struct {
				Instances map[string]json.RawMessage `json:"old-instances"`
			}
			decodeJSON(t, get, &after)
			assert.JSONEq(t, tc.body, string(after.Instances[tc.url]))
			assert.Len(t, after.Instances, len(doc.Instances))
		})
	}
}

// ─── Ambient ───────────────────────────────────────────────────────────

func TestServer_RequestID(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	doJSON(t, s, http.MethodPut, "/", `{"url":"http://127.0.0.1:5679/new"}`)
	doJSON(t, s, http.MethodPut, "/", `nope`)

	rec := doJSON(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `dativetop_instance_updates_total{result="ok"} 1`)
	assert.Contains(t, body, `dativetop_instance_updates_total{result="bad_json"} 1`)
	assert.Contains(t, body, `dativetop_http_requests_total{code="400",method="PUT"} 1`)
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DativeTop Server API")
}

func TestNewServer_NilRegistry(t *testing.T) {
	_, err := server.NewServer(server.DefaultConfig(), nil)
	assert.Error(t, err)
}

// ─── WebSocket change feed ─────────────────────────────────────────────

func TestServer_WatchWS(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var initial model.Registry
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Len(t, initial.OLDInstances, 3)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/", strings.NewReader(`{"name":"Gitksan","url":"http://127.0.0.1:5679/git"}`))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	var next model.Registry
	require.NoError(t, conn.ReadJSON(&next))
	assert.Len(t, next.OLDInstances, 4)
	assert.Equal(t, "Gitksan", next.OLDInstances["http://127.0.0.1:5679/git"].Name)
}
