package nasc

import (
	"context"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip      bool   // Don't inject this field
	optional  bool   // Leave the field as is if the component is not available
	qualifier string // Qualifier of the requested component
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - the default component of the field type
//   - `inject:"optional"` - optional injection
//   - `inject:"qualifier=foo"` - qualified component
//   - `inject:"optional,qualifier=foo"` - combined options
//   - `inject:"-"` - the field is skipped
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		if part == "optional" {
			opts.optional = true
		} else if strings.HasPrefix(part, "qualifier=") {
			opts.qualifier = strings.TrimPrefix(part, "qualifier=")
		}
	}

	return opts
}

// AutoWire populates tagged exported fields of the struct pointed by target
// with components of the registry. The target itself does not need to be a
// component, which is handy for application roots.
//
// Example:
//
//	type App struct {
//	    Users   *UserService `inject:""`
//	    Cache   Cache        `inject:"optional"`
//	    Primary Database     `inject:"qualifier=primary"`
//	}
//
//	app := &App{}
//	err := n.AutoWire(app)
func (n *Nasc) AutoWire(target interface{}) error {
	if target == nil {
		return errors.New("cannot auto-wire nil target")
	}

	v := reflect.ValueOf(target)
	if !isStructPtr(v.Type()) {
		return errors.Errorf("AutoWire requires a pointer to struct, got %T", target)
	}
	if v.IsNil() {
		return errors.New("cannot auto-wire nil pointer")
	}

	if err := n.mu.lock("AutoWire"); err != nil {
		return err
	}
	defer n.mu.unlock()
	return n.injectFields(newResolution(context.Background()), v.Type(), "", v)
}

// injectFields resolves tagged fields of the struct pointed by v. Failures
// are reported as DependencyResolutionError on behalf of the owner type t.
func (n *Nasc) injectFields(res *resolution, t reflect.Type, qualifier string, v reflect.Value) error {
	sv := v.Elem()
	for _, f := range n.reflCache.injectableFields(sv.Type(), n.config.InjectTag) {
		comp, err := n.resolve(res, f.typ, f.opts.qualifier)
		if err != nil {
			if f.opts.optional && isUnavailable(err) {
				n.logger.Debug("Optional field ", f.name, " of ", t, " is not injected: ", err)
				continue
			}
			return &DependencyResolutionError{Type: t, Qualifier: qualifier, Param: -1, Field: f.name, Cause: err}
		}
		sv.Field(f.index).Set(valueOf(comp, f.typ))
	}
	return nil
}

// isUnavailable reports whether err means the component itself cannot be
// provided at all, as opposed to a failure while building it. Only the
// top-level error counts: the same errors deeper in the chain belong to
// dependencies of a declared component.
func isUnavailable(err error) bool {
	switch err.(type) {
	case *NotAComponentError, *NoConstructorError:
		return true
	}
	return false
}
