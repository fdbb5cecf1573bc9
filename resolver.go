package nasc

import (
	"context"
	"reflect"
	"time"

	"github.com/toutaio/toutago-nasc-registry/store"
)

// resolution tracks components under construction within one top-level Get.
// ctx carries the span of the innermost construction.
type resolution struct {
	ctx  context.Context
	path []ComponentRef
}

func newResolution(ctx context.Context) *resolution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &resolution{ctx: ctx}
}

func (r *resolution) push(t reflect.Type, qualifier string) {
	r.path = append(r.path, ComponentRef{Type: t, Qualifier: qualifier})
}

func (r *resolution) pop() {
	r.path = r.path[:len(r.path)-1]
}

// cycle describes the path from the first occurrence of (t, qualifier) to the
// repeated request. A pair marked in progress by an earlier failed
// construction is not on the path, only the repeated request is reported.
func (r *resolution) cycle(t reflect.Type, qualifier string) []string {
	ref := ComponentRef{Type: t, Qualifier: qualifier}.String()
	start := -1
	for i, cr := range r.path {
		if cr.Type == t && cr.Qualifier == qualifier {
			start = i
			break
		}
	}
	if start < 0 {
		return []string{ref}
	}

	res := make([]string, 0, len(r.path)-start+1)
	for _, cr := range r.path[start:] {
		res = append(res, cr.String())
	}
	return append(res, ref)
}

// resolve returns the ready component for (t, qualifier), or builds it.
// The pair is reserved before construction, so a request of it from its own
// dependencies is reported as a cycle.
func (n *Nasc) resolve(res *resolution, t reflect.Type, qualifier string) (interface{}, error) {
	if !n.metadata.IsComponent(t) {
		return nil, &NotAComponentError{Type: t}
	}

	e, err := n.store.Find(t, qualifier, n.config.match())
	if err != nil {
		return nil, err
	}

	switch e.State {
	case store.Ready:
		return e.Value, nil
	case store.InProgress:
		n.logger.Warn("Cyclic dependency detected for ", t, qualifierSuffix(e.Qualifier))
		err := &CyclicDependencyError{Type: t, Qualifier: e.Qualifier, Path: res.cycle(t, e.Qualifier)}
		n.metrics.failed(t, err)
		return nil, err
	}

	if _, err := n.store.Reserve(t, qualifier); err != nil {
		return nil, err
	}
	n.logger.Debug("Reserved ", t, qualifierSuffix(qualifier), ", constructing it")

	instance, err := n.construct(res, t, qualifier)
	if err != nil {
		n.metrics.failed(t, err)
		n.release(t, qualifier)
		return nil, err
	}
	n.logger.Info("Constructed component ", t, qualifierSuffix(qualifier))

	if err := n.events.firePost(t, qualifier, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// construct builds the reserved component inside its own span, notifies
// pre-insert listeners and stores it.
func (n *Nasc) construct(res *resolution, t reflect.Type, qualifier string) (instance interface{}, err error) {
	parent := res.ctx
	ctx, span := n.startSpan(parent, t, qualifier)
	res.ctx = ctx
	started := time.Now()
	defer func() {
		res.ctx = parent
		endSpan(span, err)
	}()

	res.push(t, qualifier)
	instance, err = n.instantiate(res, t, qualifier)
	res.pop()
	if err != nil {
		return nil, err
	}

	if err := n.events.firePre(t, qualifier, instance); err != nil {
		return nil, err
	}
	if _, err := n.store.Put(t, qualifier, instance); err != nil {
		return nil, err
	}
	n.metrics.constructed(t, started)
	return instance, nil
}

// release drops the reservation of a component whose construction failed,
// unless the registry keeps failures sticky.
func (n *Nasc) release(t reflect.Type, qualifier string) {
	if n.config.StickyFailures {
		n.logger.Warn("Construction of ", t, qualifierSuffix(qualifier), " failed, the in-progress mark is kept")
		return
	}
	if n.store.Release(t, qualifier) {
		n.logger.Warn("Construction of ", t, qualifierSuffix(qualifier), " failed, the reservation is released")
	}
}
