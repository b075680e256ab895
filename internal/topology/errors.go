package topology

import (
	"errors"
	"fmt"
)

// Configuration errors. A configuration that fails with any of them is never
// committed.
var (
	// ErrInvalidMass indicates an atom with a mass that is not strictly positive.
	ErrInvalidMass = errors.New("topology: atom mass must be positive")

	// ErrDanglingSpringReference indicates a spring endpoint that names no atom.
	ErrDanglingSpringReference = errors.New("topology: spring references a missing atom")

	// ErrDuplicateID indicates two atoms or two springs sharing an id.
	ErrDuplicateID = errors.New("topology: duplicate id")

	// ErrInvalidID indicates a non-positive atom or spring id.
	ErrInvalidID = errors.New("topology: atom and spring ids must be positive")

	// ErrInvalidRestLength indicates a spring with a negative rest length.
	ErrInvalidRestLength = errors.New("topology: spring rest length must not be negative")

	// ErrUnknownAtom indicates an edit that targets an atom id not in the configuration.
	ErrUnknownAtom = errors.New("topology: unknown atom")

	// ErrUnknownSpring indicates an edit that targets a spring id not in the configuration.
	ErrUnknownSpring = errors.New("topology: unknown spring")
)

// DanglingReferenceError names the spring and the atom id it failed to find.
type DanglingReferenceError struct {
	SpringID int
	AtomID   int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("topology: spring %d references missing atom %d", e.SpringID, e.AtomID)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingSpringReference }

// InvalidMassError names the atom whose mass was rejected.
type InvalidMassError struct {
	AtomID int
	Mass   float64
}

func (e *InvalidMassError) Error() string {
	return fmt.Sprintf("topology: atom %d has invalid mass %g", e.AtomID, e.Mass)
}

func (e *InvalidMassError) Unwrap() error { return ErrInvalidMass }

// DuplicateIDError names the colliding id. Kind is "atom" or "spring".
type DuplicateIDError struct {
	Kind string
	ID   int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("topology: duplicate %s id %d", e.Kind, e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }
