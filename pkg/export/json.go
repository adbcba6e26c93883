package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/kgraph/pkg/types"
)

// ExportJSON writes data as indented JSON.
func ExportJSON(w io.Writer, data *types.GraphData) error {
	var out types.GraphData
	if data != nil {
		out = *data
	}
	if out.Nodes == nil {
		out.Nodes = []types.Node{}
	}
	if out.Edges == nil {
		out.Edges = []types.Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// ImportJSON decodes graph JSON. Input that does not parse is passed
// through jsonrepair once before giving up. Every node needs an id and must
// validate; every edge must validate.
func ImportJSON(r io.Reader) (*types.GraphData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph json: %w", err)
	}

	var data types.GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(raw))
		if rerr != nil {
			return nil, fmt.Errorf("failed to parse graph json: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("failed to parse repaired graph json: %w", err)
		}
	}

	for i := range data.Nodes {
		if err := data.Nodes[i].ValidateForCreate(); err != nil {
			return nil, fmt.Errorf("invalid node %d (%q): %w", i, data.Nodes[i].ID, err)
		}
	}
	for i := range data.Edges {
		if err := data.Edges[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid edge %d (%q): %w", i, data.Edges[i].ID, err)
		}
	}
	if data.Nodes == nil {
		data.Nodes = []types.Node{}
	}
	if data.Edges == nil {
		data.Edges = []types.Edge{}
	}
	return &data, nil
}
