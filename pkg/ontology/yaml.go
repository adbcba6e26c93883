package ontology

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the YAML layout accepted by LoadYAML:
//
//	namespace: http://example.org/onto#
//	classes:
//	  - uri: Animal
//	    label: Animal
//	  - uri: Dog
//	    parent_classes: [Animal]
//	properties:
//	  - uri: owns
//	    domain: Person
//	    range: Animal
type Document struct {
	Namespace  string     `yaml:"namespace"`
	Classes    []Class    `yaml:"classes"`
	Properties []Property `yaml:"properties"`
}

// LoadYAML adds the classes and properties described in r. The namespace is
// only adopted when the ontology still uses the default one. A document with
// an invalid entry leaves the ontology untouched.
func (o *Ontology) LoadYAML(r io.Reader) error {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode ontology: %w", err)
	}

	for i, c := range doc.Classes {
		if c.URI == "" {
			return fmt.Errorf("class %d: uri cannot be empty", i)
		}
	}
	for i, p := range doc.Properties {
		if p.URI == "" {
			return fmt.Errorf("property %d: uri cannot be empty", i)
		}
	}

	for _, c := range doc.Classes {
		if c.Label == "" {
			c.Label = c.URI
		}
		o.AddClass(c)
	}
	for _, p := range doc.Properties {
		if p.Label == "" {
			p.Label = p.URI
		}
		o.AddProperty(p)
	}

	o.mu.Lock()
	if doc.Namespace != "" && o.namespace == DefaultNamespace {
		o.namespace = doc.Namespace
	}
	o.mu.Unlock()

	o.logger.Debug("Loaded ontology", "classes", len(doc.Classes), "properties", len(doc.Properties))
	return nil
}
