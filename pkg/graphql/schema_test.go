package graphql

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/resolver"
)

func testSchema(t *testing.T) (*model.Graph, *Handler) {
	t.Helper()
	g, err := resolver.New(nil).Resolve(resolver.Structure{
		"a.py": {
			Functions: map[string]resolver.FunctionInfo{
				"foo": {Calls: []string{"bar", "missing"}},
			},
		},
		"b.py": {
			Functions: map[string]resolver.FunctionInfo{
				"bar": {},
			},
		},
	})
	require.NoError(t, err)

	schema, err := BuildSchema(func() *model.Graph { return g })
	require.NoError(t, err)
	return g, NewHandler(schema)
}

func execute(t *testing.T, h *Handler, query string) map[string]any {
	t.Helper()
	body, err := json.Marshal(Request{Query: query})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Data   map[string]any `json:"data"`
		Errors []Error        `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Errors)
	return resp.Data
}

func TestHealthQuery(t *testing.T) {
	_, h := testSchema(t)
	data := execute(t, h, `{ health }`)
	assert.Equal(t, "ok", data["health"])
}

func TestNodeLookup(t *testing.T) {
	g, h := testSchema(t)
	id := g.Nodes()[0].ID

	data := execute(t, h, `{ node(id: "`+id+`") { id name kind } }`)
	node := data["node"].(map[string]any)
	assert.Equal(t, id, node["id"])
	assert.Equal(t, "FILE", node["kind"])

	// Unknown ids resolve to null, not an error.
	data = execute(t, h, `{ node(id: "nope") { id } }`)
	assert.Nil(t, data["node"])
}

func TestNodesByKind(t *testing.T) {
	_, h := testSchema(t)

	data := execute(t, h, `{ nodes(kind: EXTERNAL) { name synthetic } }`)
	nodes := data["nodes"].([]any)
	require.Len(t, nodes, 1)
	ext := nodes[0].(map[string]any)
	assert.Equal(t, "missing", ext["name"])
	assert.Equal(t, true, ext["synthetic"])
}

func TestEdgesByRelation(t *testing.T) {
	_, h := testSchema(t)

	data := execute(t, h, `{ edges(relation: CALLS) { source target relation } }`)
	edges := data["edges"].([]any)
	assert.Len(t, edges, 2)
}

func TestNeighborsQuery(t *testing.T) {
	g, h := testSchema(t)
	var fooID string
	for _, n := range g.Nodes() {
		if n.Name == "foo" {
			fooID = n.ID
		}
	}
	require.NotEmpty(t, fooID)

	data := execute(t, h, `{ neighbors(id: "`+fooID+`") { name } }`)
	names := make(map[string]bool)
	for _, raw := range data["neighbors"].([]any) {
		names[raw.(map[string]any)["name"].(string)] = true
	}
	assert.True(t, names["a.py"], "containing file is a neighbor")
	assert.True(t, names["bar"], "call target is a neighbor")
	assert.True(t, names["missing"], "placeholder is a neighbor")
}

func TestSearchQuery(t *testing.T) {
	_, h := testSchema(t)

	data := execute(t, h, `{ search(name: "BA") { name } }`)
	results := data["search"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "bar", results[0].(map[string]any)["name"])
}

func TestHandlerRejectsGet(t *testing.T) {
	_, h := testSchema(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/graphql", nil))
	assert.Equal(t, 405, rec.Code)
}
