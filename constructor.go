package nasc

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/toutaio/toutago-nasc-registry/store"
)

// selectConstructor returns the constructor used to build t: the first one
// marked Autowired, otherwise the first declared one.
func (n *Nasc) selectConstructor(t reflect.Type) (*Constructor, error) {
	ctors := n.metadata.Constructors(t)
	if len(ctors) == 0 {
		return nil, &NoConstructorError{Type: t}
	}

	for _, c := range ctors {
		if c.autowired {
			return c, nil
		}
	}
	return ctors[0], nil
}

// instantiate builds one instance of t: it resolves the constructor
// parameters, calls the constructor, injects tagged fields if requested and
// runs the post-construction hooks.
func (n *Nasc) instantiate(res *resolution, t reflect.Type, qualifier string) (interface{}, error) {
	ctor, err := n.selectConstructor(t)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("Using constructor ", ctor.name, " for ", t)

	args, err := n.resolveArgs(res, t, qualifier, ctor)
	if err != nil {
		return nil, err
	}

	instance, err := ctor.invoke(args)
	if err != nil {
		return nil, &ConstructionError{Type: t, Constructor: ctor.name, Cause: err}
	}
	if store.IsNil(instance) {
		return nil, &ConstructionError{Type: t, Constructor: ctor.name, Cause: &NullComponentError{Type: t, Qualifier: qualifier}}
	}

	if n.metadata.InjectsFields(t) {
		if err := n.injectFields(res, t, qualifier, reflect.ValueOf(instance)); err != nil {
			return nil, err
		}
	}

	if err := n.postConstruct(t, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// resolveArgs resolves the constructor parameters in declaration order.
// Parameters of string kind receive the qualifier of the component being built.
func (n *Nasc) resolveArgs(res *resolution, t reflect.Type, qualifier string, ctor *Constructor) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(ctor.paramTypes))
	for i, pt := range ctor.paramTypes {
		if pt.Kind() == reflect.String {
			args[i] = reflect.ValueOf(qualifier).Convert(pt)
			continue
		}

		v, err := n.resolve(res, pt, ctor.qualifiers[i])
		if err != nil {
			return nil, &DependencyResolutionError{Type: t, Qualifier: qualifier, Param: i, Cause: err}
		}
		args[i] = valueOf(v, pt)
	}
	return args, nil
}

// invoke calls the constructor function, a panic is returned as an error.
func (c *Constructor) invoke(args []reflect.Value) (instance interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = errors.Errorf("constructor panicked: %v", r)
		}
	}()

	out := c.fn.Call(args)
	if c.returnsError && !out[1].IsNil() {
		return nil, errors.Wrap(out[1].Interface().(error), "constructor returned error")
	}
	return out[0].Interface(), nil
}

// valueOf converts a resolved component to a value of type t. Interface
// types need the conversion, otherwise reflect.Call gets the dynamic type.
func valueOf(v interface{}, t reflect.Type) reflect.Value {
	rv := reflect.ValueOf(v)
	if rv.Type() != t {
		rv = rv.Convert(t)
	}
	return rv
}
