package graphdef

import "testing"

var example1 = `
$schema: https://fluxline.io/schemas/graph.v1.json
apiVersion: v1
kind: Graph
metadata:
  org_id: 7
  labels:
    team: analytics
edges:
  - upstream: upload:12
    downstream: transformation:3
    freshness:
      value: 30
      unit: minutes
  - upstream: transformation:3
    downstream: pipeline:1
    freshness:
      value: 2
      unit: hours
  - upstream: upload:13
    downstream: pipeline:1
`

var example2 = `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges:
  - upstream: upload:1
    downstream: transformation:1
`

func TestParseValidDefinitions(t *testing.T) {
	for name, doc := range map[string]string{
		"full":    example1,
		"minimal": example2,
	} {
		t.Run(name, func(t *testing.T) {
			def, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if def.Kind != KindGraph {
				t.Fatalf("unexpected kind: %s", def.Kind)
			}
			if len(def.Edges) == 0 {
				t.Fatal("expected at least one edge")
			}
		})
	}
}

func TestParseRefs(t *testing.T) {
	def, err := Parse([]byte(example1))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	edge := def.Edges[0]
	if edge.Upstream.Type != "upload" || edge.Upstream.ID != 12 {
		t.Fatalf("unexpected upstream ref: %+v", edge.Upstream)
	}
	if edge.Upstream.String() != "upload:12" {
		t.Fatalf("unexpected upstream string: %s", edge.Upstream)
	}
	if edge.Downstream.Type != "transformation" || edge.Downstream.ID != 3 {
		t.Fatalf("unexpected downstream ref: %+v", edge.Downstream)
	}
}

func TestParseInvalidDefinitions(t *testing.T) {
	for name, doc := range map[string]string{
		"wrong kind": `
apiVersion: v1
kind: Job
metadata: { org_id: 1 }
edges:
  - upstream: upload:1
    downstream: transformation:1
`,
		"missing org": `
apiVersion: v1
kind: Graph
metadata: {}
edges:
  - upstream: upload:1
    downstream: transformation:1
`,
		"no edges": `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges: []
`,
		"self reference": `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges:
  - upstream: upload:1
    downstream: upload:1
`,
		"bad ref": `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges:
  - upstream: upload
    downstream: transformation:1
`,
		"bad unit": `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges:
  - upstream: upload:1
    downstream: transformation:1
    freshness: { value: 5, unit: days }
`,
		"non-positive freshness": `
apiVersion: v1
kind: Graph
metadata: { org_id: 1 }
edges:
  - upstream: upload:1
    downstream: transformation:1
    freshness: { value: 0, unit: minutes }
`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}
