package nasc

import (
	"reflect"

	"github.com/pkg/errors"
)

// Event describes a component which is going to be, or was, put into the
// registry.
type Event struct {
	Type      reflect.Type
	Qualifier string
	Component interface{}
}

// Listener is notified about components inserted into the registry. A
// non-nil error, or a panic, aborts the remaining notifications and the operation which
// caused the insertion.
type Listener func(e Event) error

// notifier keeps the listeners in registration order.
type notifier struct {
	pre  []Listener
	post []Listener
}

// AddPreInsertListener adds the listener notified right before a component
// is stored, both for Add and for components constructed by the registry.
// The listener is notified about a duplicate Add too, before the
// DuplicateComponentError is returned, so it cannot assume the insert succeeds.
func (n *Nasc) AddPreInsertListener(l Listener) {
	n.mu.mustLock("AddPreInsertListener")
	defer n.mu.unlock()
	n.events.pre = append(n.events.pre, l)
}

// AddPostInsertListener adds the listener notified right after a component
// is stored.
func (n *Nasc) AddPostInsertListener(l Listener) {
	n.mu.mustLock("AddPostInsertListener")
	defer n.mu.unlock()
	n.events.post = append(n.events.post, l)
}

func (nt *notifier) firePre(t reflect.Type, qualifier string, component interface{}) error {
	return fire(nt.pre, "pre", Event{Type: t, Qualifier: qualifier, Component: component})
}

func (nt *notifier) firePost(t reflect.Type, qualifier string, component interface{}) error {
	return fire(nt.post, "post", Event{Type: t, Qualifier: qualifier, Component: component})
}

func fire(listeners []Listener, phase string, e Event) error {
	for idx, l := range listeners {
		if err := notify(l, e); err != nil {
			return &ListenerError{
				Type:      e.Type,
				Qualifier: e.Qualifier,
				Phase:     phase,
				Cause:     errors.Wrapf(err, "listener #%d", idx),
			}
		}
	}
	return nil
}

// notify calls the listener, a panic is returned as an error.
func notify(l Listener, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("listener panicked: %v", r)
		}
	}()
	return l(e)
}
