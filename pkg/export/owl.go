package export

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/soundprediction/kgraph/pkg/ontology"
)

// ExportOWL writes the ontology as RDF/XML: one owl:Class per class with
// its label and parents, and one owl:ObjectProperty per property with its
// domain, range and characteristics.
func ExportOWL(w io.Writer, ont *ontology.Ontology) error {
	if ont == nil {
		return ErrNoOntology
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("<?xml version=\"1.0\"?>\n")
	bw.WriteString("<rdf:RDF xmlns:rdf=\"" + rdfNS + "\"\n")
	bw.WriteString("         xmlns:owl=\"http://www.w3.org/2002/07/owl#\"\n")
	bw.WriteString("         xmlns:rdfs=\"" + rdfsNS + "\"\n")
	fmt.Fprintf(bw, "         xmlns:kg=\"%s\">\n\n", xmlEscape(ont.Namespace()))

	for _, c := range ont.Classes() {
		fmt.Fprintf(bw, "  <owl:Class rdf:about=\"%s\">\n", xmlEscape(c.URI))
		fmt.Fprintf(bw, "    <rdfs:label>%s</rdfs:label>\n", xmlEscape(c.Label))
		for _, parent := range c.ParentClasses {
			fmt.Fprintf(bw, "    <rdfs:subClassOf rdf:resource=\"%s\"/>\n", xmlEscape(parent))
		}
		if c.Comment != "" {
			fmt.Fprintf(bw, "    <rdfs:comment>%s</rdfs:comment>\n", xmlEscape(c.Comment))
		}
		bw.WriteString("  </owl:Class>\n\n")
	}

	for _, p := range ont.Properties() {
		fmt.Fprintf(bw, "  <owl:ObjectProperty rdf:about=\"%s\">\n", xmlEscape(p.URI))
		fmt.Fprintf(bw, "    <rdfs:label>%s</rdfs:label>\n", xmlEscape(p.Label))
		if p.Domain != "" {
			fmt.Fprintf(bw, "    <rdfs:domain rdf:resource=\"%s\"/>\n", xmlEscape(p.Domain))
		}
		if p.Range != "" {
			fmt.Fprintf(bw, "    <rdfs:range rdf:resource=\"%s\"/>\n", xmlEscape(p.Range))
		}
		if p.InverseOf != "" {
			fmt.Fprintf(bw, "    <owl:inverseOf rdf:resource=\"%s\"/>\n", xmlEscape(p.InverseOf))
		}
		if p.Functional {
			bw.WriteString("    <rdf:type rdf:resource=\"http://www.w3.org/2002/07/owl#FunctionalProperty\"/>\n")
		}
		if p.InverseFunctional {
			bw.WriteString("    <rdf:type rdf:resource=\"http://www.w3.org/2002/07/owl#InverseFunctionalProperty\"/>\n")
		}
		bw.WriteString("  </owl:ObjectProperty>\n\n")
	}

	bw.WriteString("</rdf:RDF>\n")
	return bw.Flush()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
