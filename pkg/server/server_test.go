package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/server/dto"
	"github.com/soundprediction/kgraph/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
			Mode: gin.TestMode,
		},
	}
}

func newTestServer(t *testing.T, kg *kgraph.KnowledgeGraph) *Server {
	t.Helper()
	s := New(testConfig(), kg, nil)
	s.Setup()
	return s
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestSetup(t *testing.T) {
	s := newTestServer(t, nil)
	require.NotNil(t, s.router)
	require.NotNil(t, s.server)
	assert.Equal(t, "localhost:8080", s.server.Addr)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, kgraph.New(nil, nil))
	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/healthcheck", http.StatusOK},
		{"/live", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/health/detailed", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestNilGraphServesOnlyHealth(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/stats", nil).Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodOptions, "/health", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNodeLifecycle(t *testing.T) {
	kg := kgraph.New(nil, nil)
	s := newTestServer(t, kg)

	w := do(t, s, http.MethodPost, "/api/v1/nodes", dto.NodeRequest{ID: "ada", Label: "Ada Lovelace", Type: "entity",
		Properties: map[string]any{"born": 1815}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.IDResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ada", created.ID)

	w = do(t, s, http.MethodGet, "/api/v1/nodes/ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var n types.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
	assert.Equal(t, "Ada Lovelace", n.Label)
	assert.Equal(t, types.EntityNode, n.Type)
	assert.Equal(t, int64(1815), n.Properties["born"].Int)

	w = do(t, s, http.MethodPost, "/api/v1/nodes", map[string]any{
		"id": "pi", "label": "Pi", "properties": map[string]any{"approx": json.RawMessage("2.0"), "digits": 3},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	pi, ok := kg.GetNode("pi")
	require.True(t, ok)
	assert.True(t, pi.Properties["approx"].Equal(types.FloatValue(2)), "whole floats stay floats")
	assert.True(t, pi.Properties["digits"].Equal(types.IntValue(3)))

	w = do(t, s, http.MethodPut, "/api/v1/nodes/ada", dto.NodeRequest{Label: "Augusta Ada King", Type: "ENTITY"})
	require.Equal(t, http.StatusOK, w.Code)
	got, _ := kg.GetNode("ada")
	assert.Equal(t, "Augusta Ada King", got.Label)

	w = do(t, s, http.MethodGet, "/api/v1/nodes?q=Augusta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []types.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/nodes/ada", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/nodes/ada", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/nodes/ada", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/api/v1/nodes/ada", dto.NodeRequest{Label: "x"}).Code)
}

func TestNodeValidation(t *testing.T) {
	s := newTestServer(t, kgraph.New(nil, nil))
	conf := 1.5
	tests := []struct {
		name string
		body any
	}{
		{"missing label", map[string]any{"type": "ENTITY"}},
		{"blank label", dto.NodeRequest{Label: "  "}},
		{"bad confidence", dto.NodeRequest{Label: "x", Confidence: &conf}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/nodes", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request", resp.Error)
		})
	}
}

func TestEdgesAndTraversal(t *testing.T) {
	kg := kgraph.New(nil, nil)
	for _, id := range []string{"a", "b", "c"} {
		n := types.NewNode(strings.ToUpper(id), types.EntityNode)
		n.ID = id
		kg.AddNode(n)
	}
	s := newTestServer(t, kg)

	w := do(t, s, http.MethodPost, "/api/v1/edges", dto.EdgeRequest{ID: "ab", From: "a", To: "b", Type: "part_of"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, s, http.MethodPost, "/api/v1/edges", dto.EdgeRequest{From: "b", To: "c", Type: "mentors"})
	require.Equal(t, http.StatusCreated, w.Code)

	e, ok := kg.GetEdge("ab")
	require.True(t, ok)
	assert.Equal(t, types.PartOf, e.Type)
	custom := kg.EdgesFrom("b")
	require.Len(t, custom, 1)
	assert.Equal(t, types.Custom, custom[0].Type)
	assert.Equal(t, "mentors", custom[0].CustomLabel)

	w = do(t, s, http.MethodGet, "/api/v1/nodes/a/neighbors?type=PART_OF", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var nbrs []types.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nbrs))
	require.Len(t, nbrs, 1)
	assert.Equal(t, "b", nbrs[0].ID)

	w = do(t, s, http.MethodGet, "/api/v1/nodes/a/subgraph?radius=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sub types.Subgraph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Len(t, sub.Nodes, 3)

	w = do(t, s, http.MethodPost, "/api/v1/paths", types.NewPathQuery("a", "c"))
	require.Equal(t, http.StatusOK, w.Code)
	var paths struct {
		Paths [][]string `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paths))
	require.Len(t, paths.Paths, 1)
	assert.Equal(t, []string{"a", "b", "c"}, paths.Paths[0])

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/nodes/a/subgraph?radius=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/edges", dto.EdgeRequest{From: "a"}).Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/edges/ab", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/edges/ab", nil).Code)
}

func TestPathsDefaultToShortest(t *testing.T) {
	kg := kgraph.New(nil, nil)
	for _, id := range []string{"a", "b", "c"} {
		n := types.NewNode(strings.ToUpper(id), types.EntityNode)
		n.ID = id
		kg.AddNode(n)
	}
	kg.Connect("a", types.PartOf, "b")
	kg.Connect("b", types.PartOf, "c")
	kg.Connect("a", types.PartOf, "c")
	s := newTestServer(t, kg)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"shortest omitted", map[string]any{"start": "a", "end": "c"}, 1},
		{"shortest explicit", map[string]any{"start": "a", "end": "c", "shortest": true}, 1},
		{"shortest disabled", map[string]any{"start": "a", "end": "c", "shortest": false}, 2},
		{"all paths", map[string]any{"start": "a", "end": "c", "all_paths": true}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/paths", tt.body)
			require.Equal(t, http.StatusOK, w.Code)
			var paths struct {
				Paths [][]string `json:"paths"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paths))
			assert.Len(t, paths.Paths, tt.want)
			if tt.want == 1 {
				assert.Equal(t, []string{"a", "c"}, paths.Paths[0])
			}
		})
	}
}

func TestTriplesQueryAndInference(t *testing.T) {
	kg := kgraph.New(nil, nil)
	s := newTestServer(t, kg)

	for _, tr := range []dto.TripleRequest{
		{Subject: "Socrates", Predicate: "IS_A", Object: "Human"},
		{Subject: "Human", Predicate: "IS_A", Object: "Mortal"},
	} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/api/v1/triples", tr).Code)
	}
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/triples", dto.TripleRequest{Subject: "x"}).Code)

	w := do(t, s, http.MethodGet, "/api/v1/triples?subject=Socrates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var triples []types.Triple
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &triples))
	require.Len(t, triples, 1)

	q := types.GraphQuery{Patterns: []types.QueryPattern{types.NewPattern("?x", types.IsA, "?y")}}
	w = do(t, s, http.MethodPost, "/api/v1/query", q)
	require.Equal(t, http.StatusOK, w.Code)
	var result types.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalMatches)

	neg := -1
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/query", types.GraphQuery{Limit: &neg}).Code)

	w = do(t, s, http.MethodPost, "/api/v1/inference/run?materialize=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inf dto.InferenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inf))
	require.Len(t, inf.Triples, 1)
	assert.Equal(t, "Mortal", inf.Triples[0].Object)
	assert.Equal(t, 1, inf.Materialized)
	assert.Equal(t, 3, kg.EdgeCount())

	w = do(t, s, http.MethodGet, "/api/v1/inference/triples", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &triples))
	assert.Len(t, triples, 1)

	w = do(t, s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st types.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 1, st.InferredCount)

	w = do(t, s, http.MethodGet, "/api/v1/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v dto.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.Valid)
}

func TestAnalyticsEndpoints(t *testing.T) {
	kg := kgraph.New(nil, nil)
	kg.AddTriple("A", "RELATED_TO", "B")
	kg.AddTriple("B", "RELATED_TO", "C")
	s := newTestServer(t, kg)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/analytics/pagerank", http.StatusOK},
		{"/api/v1/analytics/centrality", http.StatusOK},
		{"/api/v1/analytics/centrality?kind=closeness", http.StatusOK},
		{"/api/v1/analytics/centrality?kind=eigen", http.StatusBadRequest},
		{"/api/v1/analytics/communities", http.StatusOK},
		{"/api/v1/analytics/communities?method=label_propagation", http.StatusOK},
		{"/api/v1/analytics/communities?method=girvan", http.StatusBadRequest},
		{"/api/v1/analytics/duplicates?threshold=0.5", http.StatusOK},
		{"/api/v1/analytics/duplicates?threshold=2", http.StatusBadRequest},
		{"/api/v1/search?q=B", http.StatusOK},
		{"/api/v1/search", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, s, http.MethodGet, tt.target, nil).Code)
		})
	}

	w := do(t, s, http.MethodGet, "/api/v1/analytics/pagerank", nil)
	var ranks map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranks))
	assert.Len(t, ranks, 3)

	w = do(t, s, http.MethodPost, "/api/v1/answer", dto.AnswerRequest{Question: "What is B?"})
	require.Equal(t, http.StatusOK, w.Code)
	var ans dto.AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ans))
	assert.Contains(t, ans.Answer, "B")
}

func TestSnapshotsAndExport(t *testing.T) {
	kg := kgraph.New(nil, nil)
	kg.AddTriple("Socrates", "IS_A", "Human")
	s := newTestServer(t, kg)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/snapshots", dto.SnapshotRequest{}).Code)

	w := do(t, s, http.MethodPost, "/api/v1/snapshots", dto.SnapshotRequest{Name: "v1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var snap dto.IDResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	kg.AddTriple("Plato", "IS_A", "Human")
	w = do(t, s, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.SnapshotInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "v1", list[0].Name)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/v1/snapshots/"+snap.ID+"/restore", nil).Code)
	assert.Equal(t, 2, kg.NodeCount())
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/snapshots/nope/restore", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/snapshots/"+snap.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/snapshots/"+snap.ID, nil).Code)

	w = do(t, s, http.MethodGet, "/api/v1/export/turtle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/turtle")
	assert.Contains(t, w.Body.String(), `rdfs:label "Socrates"`)

	w = do(t, s, http.MethodGet, "/api/v1/export/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/export/graphml", nil).Code)

	other := kgraph.New(nil, nil)
	dst := newTestServer(t, other)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(exported))
	rec := httptest.NewRecorder()
	dst.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, other.NodeCount())
	assert.Equal(t, 1, other.EdgeCount())
}

func TestVersioningDisabled(t *testing.T) {
	cfg := kgraph.DefaultConfig()
	cfg.EnableVersioning = false
	s := newTestServer(t, kgraph.New(cfg, nil))
	w := do(t, s, http.MethodPost, "/api/v1/snapshots", dto.SnapshotRequest{Name: "v1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
