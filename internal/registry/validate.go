package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndex is returned for a module position outside the list.
	ErrIndex = errors.New("index out of range")
	// ErrInvalidModule is returned when a module cannot be added.
	ErrInvalidModule = errors.New("invalid module")
)

// validate checks m before it is registered: it must be non-nil, carry a
// name, and that name must be unique within the list.
func (l *ModuleList) validate(m Module) error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrInvalidModule)
	}
	var errs []string
	if strings.TrimSpace(m.Name()) == "" {
		errs = append(errs, "module has an empty name")
	} else if l.Index(m.Name()) >= 0 {
		errs = append(errs, fmt.Sprintf("module '%s' is already in the list", m.Name()))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidModule, strings.Join(errs, "\n- "))
	}
	return nil
}
