package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/ontology"
	"github.com/soundprediction/kgraph/pkg/types"
)

func sampleGraph() *types.GraphData {
	socrates := types.NewNode("Socrates", types.EntityNode)
	socrates.ID = "s"
	socrates.SetProperty("born", types.IntValue(-470))
	human := types.NewNode("Human", types.ConceptNode)
	human.ID = "h"
	odd := types.NewNode(`The "odd" one`, types.EntityNode)
	odd.ID = "id with space"

	isA := types.NewEdge("s", types.IsA, "h")
	isA.ID = "e1"
	custom := types.NewEdge("h", types.Custom, "id with space")
	custom.ID = "e2"
	custom.CustomLabel = "knows of"
	dangling := types.NewEdge("s", types.RelatedTo, "missing")
	dangling.ID = "e3"

	return &types.GraphData{
		Name:  "philosophy",
		Nodes: []types.Node{socrates, human, odd},
		Edges: []types.Edge{isA, custom, dangling},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"turtle", FormatTurtle, false},
		{"TTL", FormatTurtle, false},
		{"json", FormatJSON, false},
		{"cypher", FormatCypher, false},
		{" owl ", FormatOWL, false},
		{"graphml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTurtleRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, ExportTurtle(&buf, sampleGraph(), ""))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "@prefix kg: <"+DefaultNamespace+"> .\n"))
	assert.Contains(t, out, "kg:s rdfs:label \"Socrates\" .\n")
	assert.Contains(t, out, "kg:h rdf:type kg:CONCEPT .\n")
	assert.Contains(t, out, "kg:s kg:IS_A kg:h .\n")
	assert.Contains(t, out, "kg:h kg:knows%20of kg:id%20with%20space .\n")
	assert.NotContains(t, out, "missing")

	data, err := ImportTurtle(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, data.Nodes, 3)
	assert.Equal(t, "s", data.Nodes[0].ID)
	assert.Equal(t, "Socrates", data.Nodes[0].Label)
	assert.Equal(t, types.ConceptNode, data.Nodes[1].Type)
	assert.Equal(t, "id with space", data.Nodes[2].ID)
	assert.Equal(t, `The "odd" one`, data.Nodes[2].Label)

	require.Len(t, data.Edges, 2)
	assert.Equal(t, types.IsA, data.Edges[0].Type)
	assert.Equal(t, types.Custom, data.Edges[1].Type)
	assert.Equal(t, "knows of", data.Edges[1].CustomLabel)
	assert.Equal(t, "id with space", data.Edges[1].To)
}

func TestImportTurtleShorthand(t *testing.T) {
	t.Parallel()
	src := `# comment
@prefix ex: <http://example.org/> .

ex:plato a ex:Entity .
ex:plato ex:related_to <http://example.org/socrates> .
`
	data, err := ImportTurtle(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, data.Nodes, 2)
	assert.Equal(t, "plato", data.Nodes[0].Label)
	assert.Equal(t, types.EntityNode, data.Nodes[0].Type)
	assert.Equal(t, "socrates", data.Nodes[1].ID)
	require.Len(t, data.Edges, 1)
	assert.Equal(t, types.RelatedTo, data.Edges[0].Type)
}

func TestImportTurtleErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"missing dot":        "@prefix kg: <http://x/> .\nkg:a kg:IS_A kg:b\n",
		"undeclared prefix":  "zz:a zz:IS_A zz:b .\n",
		"too many terms":     "@prefix kg: <http://x/> .\nkg:a kg:IS_A kg:b kg:c .\n",
		"unquoted label":     "@prefix kg: <http://x/> .\n@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .\nkg:a rdfs:label kg:b .\n",
		"unterminated quote": "@prefix kg: <http://x/> .\nkg:a kg:p \"open .\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ImportTurtle(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrTurtleSyntax)
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	in := sampleGraph()
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, in))

	out, err := ImportJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Name, out.Name)
	require.Len(t, out.Nodes, 3)
	assert.True(t, in.Nodes[0].Properties["born"].Equal(out.Nodes[0].Properties["born"]))
	require.Len(t, out.Edges, 3)
	assert.Equal(t, "knows of", out.Edges[1].CustomLabel)
}

func TestExportJSONEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, nil))
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, buf.String())
}

func TestImportJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		nodes   int
		edges   int
		wantErr error
	}{
		{
			name:  "repairs trailing commas",
			src:   `{"nodes":[{"id":"a","label":"A","confidence":1,},],"edges":[],}`,
			nodes: 1,
		},
		{
			name:  "repairs missing closing brackets",
			src:   `{"nodes":[{"id":"a","label":"A","confidence":1}],"edges":[{"from":"a","to":"a","weight":1,"confidence":1}`,
			nodes: 1,
			edges: 1,
		},
		{
			name:    "node without id",
			src:     `{"nodes":[{"label":"A","confidence":1}]}`,
			wantErr: types.ErrEmptyID,
		},
		{
			name:    "edge without endpoint",
			src:     `{"nodes":[],"edges":[{"from":"a","confidence":1}]}`,
			wantErr: types.ErrMissingEndpoint,
		},
		{
			name:    "confidence out of range",
			src:     `{"nodes":[{"id":"a","label":"A","confidence":2}]}`,
			wantErr: types.ErrInvalidConfidence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ImportJSON(strings.NewReader(tt.src))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, data.Nodes, tt.nodes)
			assert.Len(t, data.Edges, tt.edges)
		})
	}
}

func TestExportCypher(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, ExportCypher(&buf, sampleGraph()))
	out := buf.String()

	assert.Contains(t, out, `CREATE (:ENTITY {id: "s", label: "Socrates", born: -470});`)
	assert.Contains(t, out, `CREATE (:CONCEPT {id: "h", label: "Human"});`)
	assert.Contains(t, out, "MATCH (a {id: \"s\"}), (b {id: \"h\"})\nCREATE (a)-[:IS_A {weight: 1, confidence: 1}]->(b);")
	assert.Contains(t, out, "CREATE (a)-[:`knows of` {weight: 1, confidence: 1}]->(b);")
	assert.NotContains(t, out, "missing")
}

func TestExportOWL(t *testing.T) {
	t.Parallel()
	ont := ontology.New("", nil)
	ont.AddClass(ontology.Class{URI: "Animal", Label: "Animal"})
	ont.AddClass(ontology.Class{URI: "Dog", Label: "Dog & Co", ParentClasses: []string{"Animal"}})
	ont.AddProperty(ontology.Property{URI: "owns", Label: "owns", Domain: "Person", Range: "Dog", Functional: true})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatOWL, nil, ont, ""))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\"?>\n<rdf:RDF"))
	assert.Contains(t, out, `xmlns:kg="`+ontology.DefaultNamespace+`"`)
	assert.Contains(t, out, "<owl:Class rdf:about=\"Dog\">\n    <rdfs:label>Dog &amp; Co</rdfs:label>\n    <rdfs:subClassOf rdf:resource=\"Animal\"/>")
	assert.Contains(t, out, `<rdfs:domain rdf:resource="Person"/>`)
	assert.Contains(t, out, `<rdfs:range rdf:resource="Dog"/>`)
	assert.Contains(t, out, "owl#FunctionalProperty")
	assert.True(t, strings.HasSuffix(out, "</rdf:RDF>\n"))

	assert.ErrorIs(t, Write(&buf, FormatOWL, nil, nil, ""), ErrNoOntology)
}

func TestParquetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "tables")
	w, err := NewParquetWriter(dir)
	require.NoError(t, err)

	data := sampleGraph()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data.Nodes[0].CreatedAt = created
	data.Nodes[0].Embedding = []float32{0.5, 0.25}
	require.NoError(t, w.WriteGraph(ctx, data))

	nodes, err := ReadNodes(filepath.Join(dir, NodesFile))
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Socrates", nodes[0].Label)
	assert.Equal(t, []float32{0.5, 0.25}, nodes[0].Embedding)
	assert.True(t, created.Equal(nodes[0].CreatedAt))
	assert.True(t, nodes[1].CreatedAt.IsZero())
	assert.Equal(t, int64(-470), nodes[0].Properties["born"].Int)

	edges, err := ReadEdges(filepath.Join(dir, EdgesFile))
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "knows of", edges[1].CustomLabel)
	assert.Equal(t, "id with space", edges[1].To)

	triples, err := ReadTriples(filepath.Join(dir, TriplesFile))
	require.NoError(t, err)
	require.Len(t, triples, 2)
	assert.Equal(t, types.Triple{Subject: "Socrates", Predicate: "IS_A", Object: "Human", Confidence: 1}, triples[0])

	_, err = ReadNodes(filepath.Join(dir, "absent.parquet"))
	assert.Error(t, err)
}

func TestNeo4jParams(t *testing.T) {
	t.Parallel()
	data := sampleGraph()

	nodes := nodeParams(data.Nodes)
	assert.Equal(t, []string{"CONCEPT", "ENTITY"}, sortedBatchKeys(nodes))
	require.Len(t, nodes["ENTITY"], 2)
	assert.Equal(t, "s", nodes["ENTITY"][0]["id"])
	assert.Equal(t, map[string]any{"born": int64(-470)}, nodes["ENTITY"][0]["properties"])

	edges := edgeParams(data.Edges, nodeIndex(data.Nodes))
	assert.Equal(t, []string{"IS_A", "knows of"}, sortedBatchKeys(edges))
	assert.Equal(t, 2, batchLen(edges))
	assert.Equal(t, "e1", edges["IS_A"][0]["id"])
}

func TestCypherName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "IS_A", cypherName("IS_A"))
	assert.Equal(t, "`knows of`", cypherName("knows of"))
	assert.Equal(t, "`a``b`", cypherName("a`b"))
}
