package graphdef

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	APIVersionV1 = "v1"
	KindGraph    = "Graph"

	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

// Definition models the root graph document: the declared dependency
// edges of one organization.
type Definition struct {
	Schema     string   `yaml:"$schema,omitempty" json:"$schema,omitempty"`
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Edges      []Edge   `yaml:"edges" json:"edges"`
}

// Metadata contains descriptive data for the graph.
type Metadata struct {
	OrgID       int64             `yaml:"org_id" json:"org_id"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Edge declares one directed dependency: downstream requires upstream.
type Edge struct {
	Upstream   Ref        `yaml:"upstream" json:"upstream"`
	Downstream Ref        `yaml:"downstream" json:"downstream"`
	Freshness  *Freshness `yaml:"freshness,omitempty" json:"freshness,omitempty"`
}

// Freshness is the optional recency window gating the edge.
type Freshness struct {
	Value int    `yaml:"value" json:"value"`
	Unit  string `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// Ref identifies a node as "<type>:<id>", e.g. "upload:42".
type Ref struct {
	Type string
	ID   int64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// UnmarshalYAML parses the "<type>:<id>" form.
func (r *Ref) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("node reference must be <type>:<id>, got %q", raw)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("node reference id must be an integer, got %q", raw)
	}

	r.Type = parts[0]
	r.ID = id

	return nil
}

// Parse parses YAML bytes into a Definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate performs semantic validation on the definition.
func (d *Definition) Validate() error {
	if d.APIVersion != APIVersionV1 {
		return fmt.Errorf("unsupported apiVersion: %s", d.APIVersion)
	}
	if d.Kind != KindGraph {
		return fmt.Errorf("unsupported kind: %s", d.Kind)
	}
	if d.Metadata.OrgID <= 0 {
		return fmt.Errorf("metadata.org_id is required")
	}
	if len(d.Edges) == 0 {
		return fmt.Errorf("edges must contain at least one entry")
	}

	for i := range d.Edges {
		if err := validateEdge(&d.Edges[i]); err != nil {
			return fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	return nil
}

func validateEdge(e *Edge) error {
	if e.Upstream.Type == "" {
		return fmt.Errorf("upstream is required")
	}
	if e.Downstream.Type == "" {
		return fmt.Errorf("downstream is required")
	}
	if e.Upstream == e.Downstream {
		return fmt.Errorf("upstream and downstream are the same node %q", e.Upstream)
	}

	if e.Freshness == nil {
		return nil
	}

	if e.Freshness.Value <= 0 {
		return fmt.Errorf("freshness.value must be positive, got %d", e.Freshness.Value)
	}

	switch e.Freshness.Unit {
	case "", UnitMinutes, UnitHours:
		return nil
	default:
		return fmt.Errorf(
			"freshness.unit must be one of [%s,%s], got %q",
			UnitMinutes, UnitHours, e.Freshness.Unit,
		)
	}
}
