package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// DefaultNamespace is the IRI bound to the kg: prefix when none is given.
const DefaultNamespace = "http://kgraph.local/"

const (
	rdfNS  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsNS = "http://www.w3.org/2000/01/rdf-schema#"
)

var ErrTurtleSyntax = errors.New("turtle syntax error")

// ExportTurtle writes nodes as label and type triples and edges as
// predicate triples. Edges with a missing endpoint are skipped.
func ExportTurtle(w io.Writer, data *types.GraphData, namespace string) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "@prefix kg: <%s> .\n", namespace)
	fmt.Fprintf(bw, "@prefix rdf: <%s> .\n", rdfNS)
	fmt.Fprintf(bw, "@prefix rdfs: <%s> .\n\n", rdfsNS)

	if data != nil {
		for _, n := range data.Nodes {
			fmt.Fprintf(bw, "kg:%s rdfs:label %s .\n", localName(n.ID), strconv.Quote(n.Label))
			fmt.Fprintf(bw, "kg:%s rdf:type kg:%s .\n", localName(n.ID), localName(string(n.Type)))
		}
		idx := nodeIndex(data.Nodes)
		for _, e := range data.Edges {
			if _, ok := idx[e.From]; !ok {
				continue
			}
			if _, ok := idx[e.To]; !ok {
				continue
			}
			fmt.Fprintf(bw, "kg:%s kg:%s kg:%s .\n", localName(e.From), localName(e.Predicate()), localName(e.To))
		}
	}
	return bw.Flush()
}

// ImportTurtle reads the subset written by ExportTurtle: @prefix
// directives and one triple per line. Subjects with an rdfs:label become
// nodes; rdf:type (or "a") sets the node type and every other predicate
// becomes an edge. Nodes referenced only by edges are created with their
// id as label.
func ImportTurtle(r io.Reader) (*types.GraphData, error) {
	prefixes := map[string]string{}
	data := &types.GraphData{Nodes: []types.Node{}, Edges: []types.Edge{}}
	pos := map[string]int{}

	node := func(id string) *types.Node {
		if i, ok := pos[id]; ok {
			return &data.Nodes[i]
		}
		n := types.NewNode(id, types.EntityNode)
		n.ID = id
		pos[id] = len(data.Nodes)
		data.Nodes = append(data.Nodes, n)
		return &data.Nodes[len(data.Nodes)-1]
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasSuffix(line, ".") {
			return nil, fmt.Errorf("%w: line %d: missing terminating '.'", ErrTurtleSyntax, lineNo)
		}
		terms, err := splitTerms(strings.TrimSpace(strings.TrimSuffix(line, ".")))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTurtleSyntax, lineNo, err)
		}

		if terms[0] == "@prefix" {
			if len(terms) != 3 || !strings.HasSuffix(terms[1], ":") {
				return nil, fmt.Errorf("%w: line %d: malformed @prefix", ErrTurtleSyntax, lineNo)
			}
			prefixes[strings.TrimSuffix(terms[1], ":")] = strings.Trim(terms[2], "<>")
			continue
		}
		if len(terms) != 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 terms, got %d", ErrTurtleSyntax, lineNo, len(terms))
		}

		subject, err := resolveTerm(terms[0], prefixes)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTurtleSyntax, lineNo, err)
		}
		predicate, err := resolveTerm(terms[1], prefixes)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrTurtleSyntax, lineNo, err)
		}

		switch {
		case predicate.iri == rdfsNS+"label":
			label, err := strconv.Unquote(terms[2])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: label must be a quoted string", ErrTurtleSyntax, lineNo)
			}
			node(subject.local).Label = label
		case predicate.iri == rdfNS+"type" || terms[1] == "a":
			object, err := resolveTerm(terms[2], prefixes)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrTurtleSyntax, lineNo, err)
			}
			node(subject.local).Type = types.ParseNodeType(object.local)
		default:
			object, err := resolveTerm(terms[2], prefixes)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrTurtleSyntax, lineNo, err)
			}
			node(subject.local)
			node(object.local)
			e := types.NewEdge(subject.local, types.ParseEdgeType(predicate.local), object.local)
			if e.Type == types.Custom {
				e.CustomLabel = predicate.local
			}
			data.Edges = append(data.Edges, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turtle: %w", err)
	}
	return data, nil
}

type term struct {
	iri   string
	local string
}

// resolveTerm expands a prefixed name or an <iri> reference. The local part
// is unescaped.
func resolveTerm(raw string, prefixes map[string]string) (term, error) {
	if raw == "a" {
		return term{iri: rdfNS + "type", local: "type"}, nil
	}
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		iri := raw[1 : len(raw)-1]
		local := iri
		if i := strings.LastIndexAny(iri, "#/"); i >= 0 {
			local = iri[i+1:]
		}
		return term{iri: iri, local: unescapeLocal(local)}, nil
	}
	prefix, local, ok := strings.Cut(raw, ":")
	if !ok {
		return term{}, fmt.Errorf("unexpected term %q", raw)
	}
	ns, ok := prefixes[prefix]
	if !ok {
		return term{}, fmt.Errorf("undeclared prefix %q", prefix)
	}
	return term{iri: ns + local, local: unescapeLocal(local)}, nil
}

// splitTerms splits a statement on whitespace, keeping quoted strings whole.
func splitTerms(s string) ([]string, error) {
	var terms []string
	for s != "" {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("unterminated string literal")
			}
			terms = append(terms, quoted)
			s = s[len(quoted):]
			continue
		}
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		terms = append(terms, s[:end])
		s = s[end:]
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty statement")
	}
	return terms, nil
}

// localName percent-escapes every byte outside [A-Za-z0-9_-] so ids are
// valid prefixed names.
func localName(id string) string {
	var sb strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

func unescapeLocal(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
