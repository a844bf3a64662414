package product

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when no live product has the id.
var ErrNotFound = errors.New("product not found")

type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	default:
		return "unexpected"
	}
}

// OperationError is the only error shape product operations return.
// Err holds internal detail and must never reach a client.
type OperationError struct {
	Op   Operation
	Kind ErrorKind
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("product %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// NewOperationError classifies err for op. ErrNotFound becomes KindNotFound,
// everything else that came from a collaborator is a persistence failure.
func NewOperationError(op Operation, err error) *OperationError {
	kind := KindPersistence
	if errors.Is(err, ErrNotFound) {
		kind = KindNotFound
	}
	return &OperationError{Op: op, Kind: kind, Err: err}
}
