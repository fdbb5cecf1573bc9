package store

import (
	"fmt"
	"reflect"
)

// NotAComponentError is returned when a type is not declared as a component.
type NotAComponentError struct {
	Type reflect.Type
}

func (e *NotAComponentError) Error() string {
	return fmt.Sprintf("type %v is not declared as a component", e.Type)
}

// NullComponentError is returned when nil is offered as a component instance.
type NullComponentError struct {
	Type      reflect.Type
	Qualifier string
}

func (e *NullComponentError) Error() string {
	return fmt.Sprintf("nil component for type %v%s", e.Type, qualifierSuffix(e.Qualifier))
}

// TypeMismatchError is returned when a component is not assignable to the type
// it is stored under.
type TypeMismatchError struct {
	Type   reflect.Type
	Actual reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("component of type %v is not assignable to %v", e.Actual, e.Type)
}

func qualifierSuffix(q string) string {
	if q == "" {
		return ""
	}
	return fmt.Sprintf(" (qualifier=%q)", q)
}
