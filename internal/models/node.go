package models

import "fmt"

// NodeType enumerates the entity kinds that can participate in the
// dependency graph. A node is not a single table: every (NodeType, id)
// pair resolves against one of three independent entity tables, so
// referential validity is enforced at the application layer.
type NodeType string

const (
	NodeTypeUpload         NodeType = "upload"
	NodeTypeTransformation NodeType = "transformation"
	NodeTypePipeline       NodeType = "pipeline"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeUpload, NodeTypeTransformation, NodeTypePipeline:
		return true
	}
	return false
}

// NodeRef is a polymorphic reference to an upload, transformation,
// or pipeline.
type NodeRef struct {
	Type NodeType `json:"type"`
	ID   int64    `json:"id"`
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}
