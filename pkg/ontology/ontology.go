// Package ontology keeps a lightweight class and property vocabulary and
// runs advisory structural validation over graph content.
package ontology

import (
	"log/slog"
	"slices"
	"sort"
	"sync"
)

// DefaultNamespace prefixes class and property URIs in exports.
const DefaultNamespace = "http://kgraph.local/ontology#"

// Class is a named type with zero or more parent classes.
type Class struct {
	URI           string   `json:"uri" yaml:"uri"`
	Label         string   `json:"label" yaml:"label"`
	ParentClasses []string `json:"parent_classes,omitempty" yaml:"parent_classes"`
	Properties    []string `json:"properties,omitempty" yaml:"properties"`
	Comment       string   `json:"comment,omitempty" yaml:"comment"`
}

// Property is a named relation with optional domain and range classes.
type Property struct {
	URI               string `json:"uri" yaml:"uri"`
	Label             string `json:"label" yaml:"label"`
	Domain            string `json:"domain,omitempty" yaml:"domain"`
	Range             string `json:"range,omitempty" yaml:"range"`
	Functional        bool   `json:"functional,omitempty" yaml:"functional"`
	InverseFunctional bool   `json:"inverse_functional,omitempty" yaml:"inverse_functional"`
	InverseOf         string `json:"inverse_of,omitempty" yaml:"inverse_of"`
	Comment           string `json:"comment,omitempty" yaml:"comment"`
}

// Ontology stores classes and properties keyed by URI.
type Ontology struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	namespace  string
	classes    map[string]Class
	properties map[string]Property
}

// New creates an empty ontology. An empty namespace selects
// DefaultNamespace.
func New(namespace string, logger *slog.Logger) *Ontology {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ontology{
		logger:     logger.With("component", "ontology"),
		namespace:  namespace,
		classes:    make(map[string]Class),
		properties: make(map[string]Property),
	}
}

func (o *Ontology) Namespace() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.namespace
}

// AddClass registers or replaces a class.
func (o *Ontology) AddClass(c Class) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c.ParentClasses = slices.Clone(c.ParentClasses)
	c.Properties = slices.Clone(c.Properties)
	o.classes[c.URI] = c
}

func (o *Ontology) RemoveClass(uri string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.classes[uri]; !ok {
		return false
	}
	delete(o.classes, uri)
	return true
}

func (o *Ontology) GetClass(uri string) (Class, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	c, ok := o.classes[uri]
	return c, ok
}

// Classes lists every class ordered by URI.
func (o *Ontology) Classes() []Class {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Class, 0, len(o.classes))
	for _, uri := range sortedKeys(o.classes) {
		out = append(out, o.classes[uri])
	}
	return out
}

// Subclasses returns the URIs of classes listing uri as a direct parent.
func (o *Ontology) Subclasses(uri string) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []string
	for _, id := range sortedKeys(o.classes) {
		if slices.Contains(o.classes[id].ParentClasses, uri) {
			out = append(out, id)
		}
	}
	return out
}

// Superclasses returns the direct parents of uri.
func (o *Ontology) Superclasses(uri string) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.classes[uri].ParentClasses)
}

// IsSubclassOf reports whether parent is reachable from child through
// parent links. A class is a subclass of itself. Cyclic hierarchies are
// handled.
func (o *Ontology) IsSubclassOf(child, parent string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if child == parent {
		return true
	}
	visited := map[string]bool{child: true}
	queue := []string{child}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range o.classes[cur].ParentClasses {
			if p == parent {
				return true
			}
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false
}

// AddProperty registers or replaces a property.
func (o *Ontology) AddProperty(p Property) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.properties[p.URI] = p
}

func (o *Ontology) RemoveProperty(uri string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.properties[uri]; !ok {
		return false
	}
	delete(o.properties, uri)
	return true
}

func (o *Ontology) GetProperty(uri string) (Property, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.properties[uri]
	return p, ok
}

// Properties lists every property ordered by URI.
func (o *Ontology) Properties() []Property {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Property, 0, len(o.properties))
	for _, uri := range sortedKeys(o.properties) {
		out = append(out, o.properties[uri])
	}
	return out
}

// PropertiesForClass returns the properties whose domain is uri.
func (o *Ontology) PropertiesForClass(uri string) []Property {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []Property
	for _, id := range sortedKeys(o.properties) {
		if p := o.properties[id]; p.Domain == uri {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
