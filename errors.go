package nasc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toutaio/toutago-nasc-registry/store"
)

type (
	// NotAComponentError is returned when an operation targets a type which is
	// not declared as a component.
	NotAComponentError = store.NotAComponentError

	// NullComponentError is returned when nil is registered as a component, or
	// when a constructor returns nil.
	NullComponentError = store.NullComponentError

	// TypeMismatchError is returned when a component is not assignable to the
	// type it is registered under.
	TypeMismatchError = store.TypeMismatchError
)

// DuplicateComponentError is returned by Add when the (type, qualifier) pair
// is already present in the container.
type DuplicateComponentError struct {
	Type      reflect.Type
	Qualifier string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("the container already contains a %v instance%s", e.Type, qualifierSuffix(e.Qualifier))
}

// CyclicDependencyError is returned when resolution re-enters a (type, qualifier)
// pair which is currently under construction.
type CyclicDependencyError struct {
	Type      reflect.Type
	Qualifier string
	Path      []string
}

func (e *CyclicDependencyError) Error() string {
	msg := fmt.Sprintf("cyclic dependency detected: %v%s is currently being created", e.Type, qualifierSuffix(e.Qualifier))
	if len(e.Path) > 0 {
		msg += ": " + strings.Join(e.Path, " -> ")
	}
	return msg
}

// NoConstructorError is returned when a component must be constructed, but
// no constructor is declared for its type.
type NoConstructorError struct {
	Type reflect.Type
}

func (e *NoConstructorError) Error() string {
	return fmt.Sprintf("no constructors declared for %v", e.Type)
}

// DependencyResolutionError is returned when a constructor parameter, or an
// injected field, could not be resolved.
type DependencyResolutionError struct {
	Type      reflect.Type
	Qualifier string
	// Param is the constructor parameter index, -1 for injected fields
	Param int
	Field string
	Cause error
}

func (e *DependencyResolutionError) Error() string {
	where := fmt.Sprintf("parameter #%d", e.Param)
	if e.Field != "" {
		where = "field " + e.Field
	}
	return fmt.Sprintf("unable to resolve dependencies for %v%s, %s: %v", e.Type, qualifierSuffix(e.Qualifier), where, e.Cause)
}

func (e *DependencyResolutionError) Unwrap() error {
	return e.Cause
}

// ConstructionError is returned when a constructor panics, returns an error
// or returns nil.
type ConstructionError struct {
	Type        reflect.Type
	Constructor string
	Cause       error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to call %s for %v: %v", e.Constructor, e.Type, e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// PostConstructionError is returned when a post-construction hook fails.
type PostConstructionError struct {
	Type  reflect.Type
	Hook  string
	Cause error
}

func (e *PostConstructionError) Error() string {
	return fmt.Sprintf("failed to call %s post-construction hook on %v instance: %v", e.Hook, e.Type, e.Cause)
}

func (e *PostConstructionError) Unwrap() error {
	return e.Cause
}

// InvalidDeclarationError is returned when a component declaration is malformed.
type InvalidDeclarationError struct {
	Type   reflect.Type
	Reason string
}

func (e *InvalidDeclarationError) Error() string {
	return fmt.Sprintf("invalid declaration of %v: %s", e.Type, e.Reason)
}

// DuplicateDeclarationError is returned when a type is declared twice.
type DuplicateDeclarationError struct {
	Type reflect.Type
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("type %v is already declared as a component", e.Type)
}

// ListenerError wraps an error returned by an insert listener.
type ListenerError struct {
	Type      reflect.Type
	Qualifier string
	Phase     string
	Cause     error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("%s-insert listener failed for %v%s: %v", e.Phase, e.Type, qualifierSuffix(e.Qualifier), e.Cause)
}

func (e *ListenerError) Unwrap() error {
	return e.Cause
}

// ReentrantCallError is returned when a constructor, post-construction hook or
// listener calls back into the registry which invoked it.
type ReentrantCallError struct {
	Op string
}

func (e *ReentrantCallError) Error() string {
	return fmt.Sprintf("%s called while the registry is busy on the same goroutine, callbacks cannot modify or resolve components", e.Op)
}

func qualifierSuffix(q string) string {
	if q == "" {
		return ""
	}
	return fmt.Sprintf(" with qualifier '%s'", q)
}
