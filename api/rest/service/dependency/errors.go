package dependency

import (
	"fmt"

	"github.com/fluxline-cloud/fluxline/internal/models"
)

// Code identifies the exact validation rule an add request violated.
// Callers switch on codes instead of matching message text.
type Code string

const (
	CodeUnitWithoutValue Code = "unit_without_value"
	CodeNonPositiveValue Code = "non_positive_value"
	CodeInvalidUnit      Code = "invalid_unit"
	CodeUnknownNodeType  Code = "unknown_node_type"
	CodeSelfReference    Code = "self_reference"
	CodeDuplicate        Code = "duplicate"
)

// ConfigError reports a malformed dependency request. It is never
// retried; the caller must fix the request before resubmitting.
type ConfigError struct {
	Code    Code
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func configErr(code Code, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError reports that a referenced node does not resolve in the
// organization. "Wrong org" and "never existed" are deliberately not
// distinguished.
type NotFoundError struct {
	Side  string // "upstream" or "downstream"
	Node  models.NodeRef
	OrgID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(
		"%s %s with id %d not found in org %d",
		e.Side, e.Node.Type, e.Node.ID, e.OrgID,
	)
}
