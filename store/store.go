// Package store provides storage of component instances keyed by type and qualifier.
package store

import (
	"reflect"
)

// State is the state of a single (type, qualifier) entry.
type State int

const (
	// Absent means there is no entry for the (type, qualifier) pair.
	Absent State = iota

	// InProgress means construction of the component has started but not finished.
	InProgress

	// Ready means the entry holds a finished component instance.
	Ready
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case InProgress:
		return "in-progress"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Match selects how a lookup without qualifier is matched against a chain.
type Match int

const (
	// MatchFirst satisfies an empty qualifier with the first entry of the chain,
	// whatever its own qualifier is. A non-empty qualifier always matches exactly.
	MatchFirst Match = iota

	// MatchExact requires the entry qualifier to be equal to the requested one,
	// including the empty qualifier.
	MatchExact
)

// Entry is a snapshot of one node of a chain.
type Entry struct {
	Qualifier string
	State     State
	Value     interface{}
}

// node is a link in the chain of components sharing one type.
type node struct {
	qualifier string
	state     State
	value     interface{}
	next      *node
}

// Store keeps chains of (qualifier, entry) nodes per component type.
// Nodes keep insertion order inside a chain.
//
// Store is not safe for concurrent use, the owner is expected to serialize
// access to it.
type Store struct {
	chains      map[reflect.Type]*node
	order       []reflect.Type
	isComponent func(reflect.Type) bool
}

// New creates an empty Store. isComponent reports whether a type carries the
// component marker; every insert and lookup is checked against it.
func New(isComponent func(reflect.Type) bool) *Store {
	if isComponent == nil {
		isComponent = func(reflect.Type) bool { return true }
	}
	return &Store{
		chains:      make(map[reflect.Type]*node),
		isComponent: isComponent,
	}
}

// Put inserts the component for (t, qualifier) or replaces the value of the
// existing node, turning it Ready. It returns true if a node already existed.
func (s *Store) Put(t reflect.Type, qualifier string, component interface{}) (bool, error) {
	if err := s.checkComponent(t); err != nil {
		return false, err
	}
	if IsNil(component) {
		return false, &NullComponentError{Type: t, Qualifier: qualifier}
	}
	if ct := reflect.TypeOf(component); !ct.AssignableTo(t) {
		return false, &TypeMismatchError{Type: t, Actual: ct}
	}

	n, existed := s.node(t, qualifier, true)
	n.state = Ready
	n.value = component
	return existed, nil
}

// Reserve marks (t, qualifier) as InProgress if there is no node for it yet.
// An existing node is never modified, so a Ready entry cannot go back to
// InProgress. It returns true if a node already existed.
func (s *Store) Reserve(t reflect.Type, qualifier string) (bool, error) {
	if err := s.checkComponent(t); err != nil {
		return false, err
	}

	if _, ok := s.node(t, qualifier, false); ok {
		return true, nil
	}
	n, _ := s.node(t, qualifier, true)
	n.state = InProgress
	return false, nil
}

// Release removes the InProgress node for (t, qualifier). Ready nodes are
// kept. It returns true if a node was removed.
func (s *Store) Release(t reflect.Type, qualifier string) bool {
	var prev *node
	for n := s.chains[t]; n != nil; prev, n = n, n.next {
		if n.qualifier != qualifier {
			continue
		}
		if n.state != InProgress {
			return false
		}
		if prev == nil {
			s.chains[t] = n.next
		} else {
			prev.next = n.next
		}
		if s.chains[t] == nil {
			s.dropType(t)
		}
		return true
	}
	return false
}

// Find looks the entry for (t, qualifier) up. It never creates nodes. The
// returned Entry has Absent state when nothing matches.
func (s *Store) Find(t reflect.Type, qualifier string, match Match) (Entry, error) {
	if err := s.checkComponent(t); err != nil {
		return Entry{}, err
	}

	head := s.chains[t]
	if head == nil {
		return Entry{Qualifier: qualifier}, nil
	}

	if qualifier == "" && match == MatchFirst {
		return head.entry(), nil
	}

	for n := head; n != nil; n = n.next {
		if n.qualifier == qualifier {
			return n.entry(), nil
		}
	}
	return Entry{Qualifier: qualifier}, nil
}

// Qualifiers returns qualifiers of all nodes of type t in insertion order.
func (s *Store) Qualifiers(t reflect.Type) []string {
	var res []string
	for n := s.chains[t]; n != nil; n = n.next {
		res = append(res, n.qualifier)
	}
	return res
}

// Types returns the types which have at least one node, in order of their
// first insertion.
func (s *Store) Types() []reflect.Type {
	res := make([]reflect.Type, len(s.order))
	copy(res, s.order)
	return res
}

// Len returns the total number of nodes in the store.
func (s *Store) Len() int {
	cnt := 0
	for _, head := range s.chains {
		for n := head; n != nil; n = n.next {
			cnt++
		}
	}
	return cnt
}

// Reset drops all nodes.
func (s *Store) Reset() {
	s.chains = make(map[reflect.Type]*node)
	s.order = nil
}

func (s *Store) checkComponent(t reflect.Type) error {
	if t == nil || !s.isComponent(t) {
		return &NotAComponentError{Type: t}
	}
	return nil
}

// node returns the node for the exact (t, qualifier) pair. When create is
// true and the node does not exist, a new one is appended to the chain.
func (s *Store) node(t reflect.Type, qualifier string, create bool) (*node, bool) {
	head := s.chains[t]
	var last *node
	for n := head; n != nil; n = n.next {
		if n.qualifier == qualifier {
			return n, true
		}
		last = n
	}

	if !create {
		return nil, false
	}

	n := &node{qualifier: qualifier}
	if last == nil {
		s.chains[t] = n
		s.order = append(s.order, t)
	} else {
		last.next = n
	}
	return n, false
}

func (s *Store) dropType(t reflect.Type) {
	delete(s.chains, t)
	for i, ot := range s.order {
		if ot == t {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (n *node) entry() Entry {
	return Entry{Qualifier: n.qualifier, State: n.state, Value: n.value}
}

// IsNil returns true if v is nil or holds a nil pointer, map, slice, func,
// channel or interface.
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
