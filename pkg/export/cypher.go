package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExportCypher writes a Cypher script that recreates the graph: one CREATE
// per node, then a MATCH/CREATE pair per edge whose endpoints exist. Nodes
// carry their id, label and scalar properties.
func ExportCypher(w io.Writer, data *types.GraphData) error {
	bw := bufio.NewWriter(w)
	if data == nil {
		return bw.Flush()
	}
	for _, n := range data.Nodes {
		fmt.Fprintf(bw, "CREATE (:%s {%s});\n", cypherName(string(n.Type)), cypherMap(n.ID, n.Label, n.Properties))
	}
	idx := nodeIndex(data.Nodes)
	for _, e := range data.Edges {
		if _, ok := idx[e.From]; !ok {
			continue
		}
		if _, ok := idx[e.To]; !ok {
			continue
		}
		fmt.Fprintf(bw, "MATCH (a {id: %s}), (b {id: %s})\nCREATE (a)-[:%s {weight: %s, confidence: %s}]->(b);\n",
			strconv.Quote(e.From), strconv.Quote(e.To), cypherName(e.Predicate()),
			strconv.FormatFloat(e.Weight, 'g', -1, 64), strconv.FormatFloat(e.Confidence, 'g', -1, 64))
	}
	return bw.Flush()
}

// cypherName backtick-quotes labels and relationship types that are not
// plain identifiers.
func cypherName(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func cypherMap(id, label string, props types.Properties) string {
	parts := []string{"id: " + strconv.Quote(id), "label: " + strconv.Quote(label)}
	keys := make([]string, 0, len(props))
	for k := range props {
		if k == "id" || k == "label" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, cypherName(k)+": "+cypherLiteral(props[k]))
	}
	return strings.Join(parts, ", ")
}

func cypherLiteral(v types.PropertyValue) string {
	switch v.Kind {
	case types.IntProperty:
		return strconv.FormatInt(v.Int, 10)
	case types.FloatProperty:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.BoolProperty:
		return strconv.FormatBool(v.Bool)
	case types.ListProperty:
		items := make([]string, len(v.List))
		for i, s := range v.List {
			items[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return strconv.Quote(v.Str)
}
