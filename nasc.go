package nasc

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jrivets/log4g"
	"github.com/toutaio/toutago-nasc-registry/store"
	"go.opentelemetry.io/otel/trace"
)

// Nasc is the component registry. Every (type, qualifier) pair is constructed
// at most once and the instance is kept for the registry lifetime.
//
// All the registry methods are serialized by one lock, which is held for the
// whole operation including construction of dependencies, post-construction
// hooks and listeners. A constructor, hook or listener calling back into the
// registry it is invoked by gets ReentrantCallError from Declare, Add, Get and
// AutoWire, while Has, Qualifiers and Components answer with the current state.
type Nasc struct {
	mu        registryLock
	config    *Config
	logger    log4g.Logger
	catalog   *Catalog
	metadata  metadataChain
	store     *store.Store
	events    notifier
	reflCache *reflectionCache
	providers []*providerEntry
	metrics   *Metrics
	tracer    trace.Tracer
}

// New creates a new registry.
// Options can be provided to configure the registry behavior.
//
// Example:
//
//	n := nasc.New()
//	// or with options:
//	n := nasc.New(nasc.WithExactLookup(), nasc.WithLogger(log4g.GetLogger("app.di")))
func New(options ...Option) *Nasc {
	n := &Nasc{
		config:    DefaultConfig(),
		catalog:   NewCatalog(),
		reflCache: newReflectionCache(),
	}
	n.metadata = metadataChain{n.catalog}

	for _, opt := range options {
		if err := opt(n); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	if n.logger == nil {
		n.logger = log4g.GetLogger(n.config.LoggerName)
	}
	if n.tracer == nil {
		n.tracer = defaultTracer()
	}
	n.store = store.New(n.metadata.IsComponent)
	return n
}

// Declare marks the type t as a component. Options provide its constructors
// and post-construction hooks.
//
// Example:
//
//	n.Declare(reflect.TypeOf((*Logger)(nil)).Elem(), nasc.WithConstructor(NewConsoleLogger))
func (n *Nasc) Declare(t reflect.Type, opts ...DeclareOption) error {
	if err := n.mu.lock("Declare"); err != nil {
		return err
	}
	defer n.mu.unlock()

	if err := n.catalog.Declare(t, opts...); err != nil {
		return err
	}
	n.logger.Debug("Declared component ", t, " with ", len(n.catalog.Constructors(t)), " constructor(s)")
	return nil
}

// Add registers the ready component under the type t and the qualifier. The
// constructor of t is not called then. Pre-insert listeners are notified
// before the component is stored, post-insert listeners after that.
//
// Returns an error if:
//   - t is not a component (NotAComponentError)
//   - component is nil (NullComponentError)
//   - component is not assignable to t (TypeMismatchError)
//   - the (t, qualifier) pair is already present (DuplicateComponentError),
//     pre-insert listeners are notified anyway
func (n *Nasc) Add(t reflect.Type, qualifier string, component interface{}) error {
	if err := n.mu.lock("Add"); err != nil {
		return err
	}
	defer n.mu.unlock()
	return n.add(t, qualifier, component)
}

// AddInstance registers the component under its own dynamic type.
func (n *Nasc) AddInstance(component interface{}, qualifier string) error {
	if store.IsNil(component) {
		return &NullComponentError{Type: reflect.TypeOf(component), Qualifier: qualifier}
	}
	return n.Add(reflect.TypeOf(component), qualifier, component)
}

func (n *Nasc) add(t reflect.Type, qualifier string, component interface{}) error {
	if !n.metadata.IsComponent(t) {
		return &NotAComponentError{Type: t}
	}
	if store.IsNil(component) {
		return &NullComponentError{Type: t, Qualifier: qualifier}
	}
	if ct := reflect.TypeOf(component); !ct.AssignableTo(t) {
		return &TypeMismatchError{Type: t, Actual: ct}
	}

	if err := n.events.firePre(t, qualifier, component); err != nil {
		return err
	}

	e, err := n.store.Find(t, qualifier, store.MatchExact)
	if err != nil {
		return err
	}
	if e.State != store.Absent {
		return &DuplicateComponentError{Type: t, Qualifier: qualifier}
	}

	if _, err := n.store.Put(t, qualifier, component); err != nil {
		return err
	}
	n.logger.Info("Added component ", t, qualifierSuffix(qualifier))
	n.metrics.added(t)

	return n.events.firePost(t, qualifier, component)
}

// Get returns the component of type t with the qualifier, constructing it and
// its dependencies if needed. An empty qualifier requests the default
// component, see Config.DefaultLookup.
func (n *Nasc) Get(t reflect.Type, qualifier string) (interface{}, error) {
	return n.GetContext(context.Background(), t, qualifier)
}

// GetContext is Get which parents construction spans to the span of ctx.
func (n *Nasc) GetContext(ctx context.Context, t reflect.Type, qualifier string) (interface{}, error) {
	if err := n.mu.lock("Get"); err != nil {
		return nil, err
	}
	defer n.mu.unlock()
	return n.resolve(newResolution(ctx), t, qualifier)
}

// Has reports whether a ready component of type t with the qualifier exists.
// It never constructs anything.
func (n *Nasc) Has(t reflect.Type, qualifier string) bool {
	defer n.mu.read()()

	e, err := n.store.Find(t, qualifier, n.config.match())
	return err == nil && e.State == store.Ready
}

// Qualifiers returns qualifiers of components of type t, which were added or
// requested, in insertion order.
func (n *Nasc) Qualifiers(t reflect.Type) []string {
	defer n.mu.read()()
	return n.store.Qualifiers(t)
}

// ComponentRef identifies a component in the registry.
type ComponentRef struct {
	Type      reflect.Type
	Qualifier string
}

func (cr ComponentRef) String() string {
	return cr.Type.String() + qualifierSuffix(cr.Qualifier)
}

// Components returns ready components, grouped by type in order of the type
// first appearance.
func (n *Nasc) Components() []ComponentRef {
	defer n.mu.read()()

	var res []ComponentRef
	for _, t := range n.store.Types() {
		for _, q := range n.store.Qualifiers(t) {
			if e, _ := n.store.Find(t, q, store.MatchExact); e.State == store.Ready {
				res = append(res, ComponentRef{Type: t, Qualifier: q})
			}
		}
	}
	return res
}

// Reset drops all components, declarations and listeners are kept. It panics
// when called from a constructor, hook or listener of the registry.
func (n *Nasc) Reset() {
	n.mu.mustLock("Reset")
	defer n.mu.unlock()

	n.store.Reset()
	n.reflCache.clear()
	n.logger.Info("Reset(): all components are dropped")
}

// TypeOf returns the reflect.Type of T, it works for interface types too.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Declare marks T as a component of the registry.
//
// Example:
//
//	err := nasc.Declare[Logger](n, nasc.WithConstructor(NewConsoleLogger))
func Declare[T any](n *Nasc, opts ...DeclareOption) error {
	return n.Declare(TypeOf[T](), opts...)
}

// Add registers the ready component of type T with an optional qualifier.
//
// Example:
//
//	err := nasc.Add[Logger](n, &ConsoleLogger{}, "console")
func Add[T any](n *Nasc, component T, qualifier ...string) error {
	return n.Add(TypeOf[T](), qualifierOf(qualifier), component)
}

// Get returns the component of type T with an optional qualifier.
//
// Example:
//
//	svc, err := nasc.Get[*UserService](n)
//	primary, err := nasc.Get[Database](n, "primary")
func Get[T any](n *Nasc, qualifier ...string) (T, error) {
	var res T
	v, err := n.Get(TypeOf[T](), qualifierOf(qualifier))
	if err != nil {
		return res, err
	}
	res, ok := v.(T)
	if !ok {
		return res, &TypeMismatchError{Type: TypeOf[T](), Actual: reflect.TypeOf(v)}
	}
	return res, nil
}

// MustGet is like Get, but it panics if the component cannot be obtained.
// Useful in composition roots where a wiring defect must fail fast.
func MustGet[T any](n *Nasc, qualifier ...string) T {
	res, err := Get[T](n, qualifier...)
	if err != nil {
		panic(fmt.Sprintf("nasc: %v", err))
	}
	return res
}

func qualifierOf(qualifier []string) string {
	if len(qualifier) == 0 {
		return ""
	}
	return qualifier[0]
}
