package graph

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pumpgrid/internal/node"
)

var (
	// ErrNotFound is returned when unmarking a name that is not marked.
	ErrNotFound = errors.New("not found")
	// ErrOutOfOrder is returned by a strict rebuild when a node reads a
	// quantity whose provider is registered after it.
	ErrOutOfOrder = errors.New("provider registered after its consumer")
	// ErrOutputArity is reported when a multi-output handler returns a value
	// that cannot be zipped with its declared outputs.
	ErrOutputArity = errors.New("handler result does not match declared outputs")
)

// HandlerError is the error propagated from a pump when a node fails for the
// first time under the active dedup policy.
type HandlerError struct {
	Node *node.Node
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("node %q failed: %v", e.Node.Name(), e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// OrderError describes an out-of-order registration found during rebuild.
type OrderError struct {
	Consumer *node.Node
	Provider *node.Node
	Name     string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("node %q reads %q, but its provider %q is registered after it: %v",
		e.Consumer.Name(), e.Name, e.Provider.Name(), ErrOutOfOrder)
}

func (e *OrderError) Unwrap() error {
	return ErrOutOfOrder
}
