// Package export converts graph content to and from interchange formats:
// Turtle, JSON, Cypher scripts, OWL (RDF/XML), Parquet tables and a live
// Neo4j database.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soundprediction/kgraph/pkg/ontology"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Format names an export format.
type Format string

const (
	FormatTurtle Format = "turtle"
	FormatJSON   Format = "json"
	FormatCypher Format = "cypher"
	FormatOWL    Format = "owl"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoOntology        = errors.New("owl export requires an ontology")
)

// ParseFormat maps a user supplied name to a Format. "ttl" and "rdf" are
// accepted for Turtle.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "turtle", "ttl", "rdf":
		return FormatTurtle, nil
	case "json":
		return FormatJSON, nil
	case "cypher":
		return FormatCypher, nil
	case "owl":
		return FormatOWL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Write serializes data in the given format. The ontology is only used by
// FormatOWL; namespace prefixes Turtle resources.
func Write(w io.Writer, format Format, data *types.GraphData, ont *ontology.Ontology, namespace string) error {
	switch format {
	case FormatTurtle:
		return ExportTurtle(w, data, namespace)
	case FormatJSON:
		return ExportJSON(w, data)
	case FormatCypher:
		return ExportCypher(w, data)
	case FormatOWL:
		if ont == nil {
			return ErrNoOntology
		}
		return ExportOWL(w, ont)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// nodeIndex maps node ids to nodes for endpoint checks.
func nodeIndex(nodes []types.Node) map[string]types.Node {
	idx := make(map[string]types.Node, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}
