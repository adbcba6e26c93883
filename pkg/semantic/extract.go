package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// ExtractionConfidence is assigned to every phrase-matched relation.
const ExtractionConfidence = 0.7

// Relation is a triple read from text.
type Relation struct {
	Subject    string         `json:"subject"`
	Predicate  types.EdgeType `json:"predicate"`
	Object     string         `json:"object"`
	Confidence float64        `json:"confidence"`
	SourceText string         `json:"source_text"`
}

var relationPhrases = []struct {
	phrase    string
	predicate types.EdgeType
}{
	{" is a ", types.IsA},
	{" is an ", types.IsA},
	{" causes ", types.Causes},
	{" caused by ", types.CausedBy},
	{" is part of ", types.PartOf},
	{" contains ", types.Contains},
	{" is related to ", types.RelatedTo},
	{" is similar to ", types.SimilarTo},
	{" is located in ", types.LocatedIn},
}

// ExtractRelations splits text into sentences on '.' and, in each sentence,
// reads "subject <phrase> object" for the first occurrence of every known
// phrase. Matching is case sensitive.
func ExtractRelations(text string) []Relation {
	var out []Relation
	for _, sentence := range strings.Split(text, ".") {
		for _, rp := range relationPhrases {
			pos := strings.Index(sentence, rp.phrase)
			if pos < 0 {
				continue
			}
			subject := strings.TrimSpace(sentence[:pos])
			object := strings.TrimSpace(sentence[pos+len(rp.phrase):])
			if subject == "" || object == "" {
				continue
			}
			out = append(out, Relation{
				Subject:    subject,
				Predicate:  rp.predicate,
				Object:     object,
				Confidence: ExtractionConfidence,
				SourceText: strings.TrimSpace(sentence),
			})
		}
	}
	return out
}

// Answer builds a plain-text summary of the nodes most relevant to question
// and their outgoing edges.
func Answer(question string, nodes []types.Node, edges []types.Edge) string {
	ranked, _ := LexicalRanker{}.Rank(context.Background(), question, nodes, 5)
	if len(ranked) == 0 {
		return "No relevant information found."
	}

	byID := make(map[string]types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var sb strings.Builder
	sb.WriteString("Based on the knowledge graph:\n")
	for _, r := range ranked {
		sb.WriteString("- " + byID[r.ID].Label)
		for _, e := range edges {
			if e.From != r.ID {
				continue
			}
			if target, ok := byID[e.To]; ok {
				fmt.Fprintf(&sb, " %s %s", e.Predicate(), target.Label)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
