package nasc

import (
	"reflect"
	"runtime"
	"sort"

	"github.com/pkg/errors"
)

// Metadata answers the questions the container asks about component types:
// whether a type is a component, how it can be constructed, and which of its
// methods must run after construction.
//
// The built-in Catalog is filled by Declare. Extra sources can be plugged in
// with WithMetadata, they are consulted after the Catalog.
type Metadata interface {
	// IsComponent reports whether t is managed by the container.
	IsComponent(t reflect.Type) bool

	// Constructors returns constructors of t in declaration order.
	Constructors(t reflect.Type) []*Constructor

	// IsPostConstructor reports whether method m of a t instance must be
	// called after construction.
	IsPostConstructor(t reflect.Type, m reflect.Method) bool

	// InjectsFields reports whether tagged fields of a t instance are
	// populated after construction.
	InjectsFields(t reflect.Type) bool
}

// Constructor is a function building a component. Supported signatures:
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
//
// where T is assignable to the component type. Parameters of string kind
// receive the qualifier of the component being built.
type Constructor struct {
	fn           reflect.Value
	name         string
	paramTypes   []reflect.Type
	qualifiers   []string
	returnType   reflect.Type
	returnsError bool
	autowired    bool
}

// ConstructorOption configures a Constructor.
type ConstructorOption func(c *Constructor) error

// Autowired marks the constructor as the designated one for injection.
func Autowired() ConstructorOption {
	return func(c *Constructor) error {
		c.autowired = true
		return nil
	}
}

// Qualify requests the component with the qualifier for the parameter with
// index idx.
func Qualify(idx int, qualifier string) ConstructorOption {
	return func(c *Constructor) error {
		if idx < 0 || idx >= len(c.paramTypes) {
			return errors.Errorf("parameter index %d is out of range, %s has %d parameters", idx, c.name, len(c.paramTypes))
		}
		c.qualifiers[idx] = qualifier
		return nil
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NewConstructor analyzes fn and returns its Constructor description.
func NewConstructor(fn interface{}, opts ...ConstructorOption) (*Constructor, error) {
	if fn == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, errors.Errorf("constructor must be a function, got %v", ft)
	}
	if ft.IsVariadic() {
		return nil, errors.Errorf("constructor %v must not be variadic", ft)
	}

	numOut := ft.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, errors.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}
	returnsError := false
	if numOut == 2 {
		if ft.Out(1) != errorType {
			return nil, errors.Errorf("constructor's second return value must be error, got %v", ft.Out(1))
		}
		returnsError = true
	}

	c := &Constructor{
		fn:           fv,
		name:         funcName(fv),
		paramTypes:   make([]reflect.Type, ft.NumIn()),
		qualifiers:   make([]string, ft.NumIn()),
		returnType:   ft.Out(0),
		returnsError: returnsError,
	}
	for i := range c.paramTypes {
		c.paramTypes[i] = ft.In(i)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Name returns the constructor function name.
func (c *Constructor) Name() string {
	return c.name
}

// IsAutowired reports whether the constructor is the designated one.
func (c *Constructor) IsAutowired() bool {
	return c.autowired
}

// NumParams returns the number of constructor parameters.
func (c *Constructor) NumParams() int {
	return len(c.paramTypes)
}

// ReturnType returns the type of the first result.
func (c *Constructor) ReturnType() reflect.Type {
	return c.returnType
}

func (c *Constructor) String() string {
	return c.name
}

func funcName(fv reflect.Value) string {
	if f := runtime.FuncForPC(fv.Pointer()); f != nil {
		return f.Name()
	}
	return fv.Type().String()
}

// declaration keeps everything known about a single component type.
type declaration struct {
	constructors []*Constructor
	hooks        map[string]bool
	injectFields bool
}

// DeclareOption configures a component declaration.
type DeclareOption func(t reflect.Type, d *declaration) error

// WithConstructor adds a constructor function to the declaration.
//
// Example:
//
//	nasc.Declare[*UserService](n,
//	    nasc.WithConstructor(NewUserService, nasc.Autowired(), nasc.Qualify(1, "primary")),
//	)
func WithConstructor(fn interface{}, opts ...ConstructorOption) DeclareOption {
	return func(t reflect.Type, d *declaration) error {
		c, err := NewConstructor(fn, opts...)
		if err != nil {
			return err
		}
		if !c.returnType.AssignableTo(t) {
			return errors.Errorf("constructor %s returns %v, which is not assignable to %v", c.name, c.returnType, t)
		}
		d.constructors = append(d.constructors, c)
		return nil
	}
}

// PostConstruct marks methods, which are called after the component is built.
// The methods must be exported, take no arguments and return nothing or an
// error. They are invoked in the order of the type's method set. For an
// interface type the names are checked against the built instance, a missing
// method fails the construction.
func PostConstruct(methods ...string) DeclareOption {
	return func(t reflect.Type, d *declaration) error {
		for _, name := range methods {
			if t.Kind() != reflect.Interface {
				m, ok := t.MethodByName(name)
				if !ok {
					return errors.Errorf("%v has no exported method %s", t, name)
				}
				if err := checkHookType(m.Type, 1); err != nil {
					return errors.Errorf("method %s: %v", name, err)
				}
			}
			if d.hooks == nil {
				d.hooks = make(map[string]bool)
			}
			d.hooks[name] = true
		}
		return nil
	}
}

// InjectFields requests population of the component's tagged fields right
// after construction and before post-construction hooks.
func InjectFields() DeclareOption {
	return func(t reflect.Type, d *declaration) error {
		if !isStructPtr(t) {
			return errors.Errorf("field injection requires a pointer to struct, got %v", t)
		}
		d.injectFields = true
		return nil
	}
}

// checkHookType validates signature of a hook method. in is the number of
// expected inputs, 1 for method expressions which have the receiver first.
func checkHookType(mt reflect.Type, in int) error {
	if mt.NumIn() != in {
		return errors.New("post-construction hook must take no arguments")
	}
	switch mt.NumOut() {
	case 0:
		return nil
	case 1:
		if mt.Out(0) == errorType {
			return nil
		}
	}
	return errors.New("post-construction hook must return nothing or error")
}

func isStructPtr(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

// Catalog is an explicit registration table of component declarations. It is
// the default Metadata of a container.
type Catalog struct {
	decls map[reflect.Type]*declaration
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{decls: make(map[reflect.Type]*declaration)}
}

// Declare marks t as a component.
func (c *Catalog) Declare(t reflect.Type, opts ...DeclareOption) error {
	if t == nil {
		return &InvalidDeclarationError{Reason: "type cannot be nil"}
	}
	if _, ok := c.decls[t]; ok {
		return &DuplicateDeclarationError{Type: t}
	}

	d := &declaration{}
	for _, opt := range opts {
		if err := opt(t, d); err != nil {
			return &InvalidDeclarationError{Type: t, Reason: err.Error()}
		}
	}
	c.decls[t] = d
	return nil
}

// IsComponent is a part of Metadata
func (c *Catalog) IsComponent(t reflect.Type) bool {
	_, ok := c.decls[t]
	return ok
}

// Constructors is a part of Metadata
func (c *Catalog) Constructors(t reflect.Type) []*Constructor {
	if d, ok := c.decls[t]; ok {
		return d.constructors
	}
	return nil
}

// IsPostConstructor is a part of Metadata
func (c *Catalog) IsPostConstructor(t reflect.Type, m reflect.Method) bool {
	if d, ok := c.decls[t]; ok {
		return d.hooks[m.Name]
	}
	return false
}

// PostConstructors returns the declared hook names of t, sorted.
func (c *Catalog) PostConstructors(t reflect.Type) []string {
	d, ok := c.decls[t]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(d.hooks))
	for name := range d.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectsFields is a part of Metadata
func (c *Catalog) InjectsFields(t reflect.Type) bool {
	if d, ok := c.decls[t]; ok {
		return d.injectFields
	}
	return false
}

// metadataChain asks every source in order; the first source which knows
// the type answers for it.
type metadataChain []Metadata

func (mc metadataChain) source(t reflect.Type) Metadata {
	for _, m := range mc {
		if m.IsComponent(t) {
			return m
		}
	}
	return nil
}

func (mc metadataChain) IsComponent(t reflect.Type) bool {
	return mc.source(t) != nil
}

func (mc metadataChain) Constructors(t reflect.Type) []*Constructor {
	if m := mc.source(t); m != nil {
		return m.Constructors(t)
	}
	return nil
}

func (mc metadataChain) IsPostConstructor(t reflect.Type, method reflect.Method) bool {
	if m := mc.source(t); m != nil {
		return m.IsPostConstructor(t, method)
	}
	return false
}

// hookLister is implemented by metadata sources which know hook names up
// front, so hooks missing on a built instance can be reported.
type hookLister interface {
	PostConstructors(t reflect.Type) []string
}

func (mc metadataChain) postConstructors(t reflect.Type) []string {
	if hl, ok := mc.source(t).(hookLister); ok {
		return hl.PostConstructors(t)
	}
	return nil
}

func (mc metadataChain) InjectsFields(t reflect.Type) bool {
	if m := mc.source(t); m != nil {
		return m.InjectsFields(t)
	}
	return false
}
