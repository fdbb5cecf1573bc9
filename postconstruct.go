package nasc

import (
	"reflect"

	"github.com/pkg/errors"
)

// postConstruct calls the post-construction hooks of the instance in the
// order of its method set. The first failing hook stops the sequence, effects
// of the hooks called before it are not rolled back. A declared hook the
// instance does not have fails the construction before any hook runs.
func (n *Nasc) postConstruct(t reflect.Type, instance interface{}) error {
	iv := reflect.ValueOf(instance)
	hs := n.reflCache.hookMethods(n.metadata, t, iv.Type())
	if len(hs.missing) > 0 {
		n.logger.Warn("Instance ", iv.Type(), " of ", t, " has no post-construction hook ", hs.missing)
		return &PostConstructionError{Type: t, Hook: hs.missing[0], Cause: errors.Errorf("%v has no exported method %s", iv.Type(), hs.missing[0])}
	}
	for _, idx := range hs.indexes {
		m := iv.Type().Method(idx)
		n.logger.Debug("Calling post-construction hook ", m.Name, " on ", t)
		if err := callHook(iv.Method(idx), m); err != nil {
			return &PostConstructionError{Type: t, Hook: m.Name, Cause: err}
		}
	}
	return nil
}

func callHook(fn reflect.Value, m reflect.Method) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("hook panicked: %v", r)
		}
	}()

	if err := checkHookType(fn.Type(), 0); err != nil {
		return err
	}

	out := fn.Call(nil)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
