// Package nasc provides a component registry (an inversion-of-control
// container) for Go.
//
// Nasc (Old Irish: "Link" or "Bond") lazily constructs components, caches one
// instance per (type, qualifier) pair and injects the declared dependencies of
// every component it builds.
//
// # Declaring components
//
// A type is managed by the registry only after it is declared. The
// declaration lists the constructor functions of the type and its
// post-construction hooks:
//
//	n := nasc.New()
//	nasc.Declare[Logger](n, nasc.WithConstructor(NewConsoleLogger))
//	nasc.Declare[*UserService](n,
//	    nasc.WithConstructor(NewUserService, nasc.Autowired(), nasc.Qualify(1, "primary")),
//	    nasc.PostConstruct("Start"),
//	)
//
// When several constructors are declared, the first one marked Autowired is
// used, otherwise the first declared one. Every parameter is resolved from the
// registry, Qualify selects a qualified component for a parameter. A parameter
// of string kind receives the qualifier of the component being built.
//
// # Resolving
//
//	svc, err := nasc.Get[*UserService](n)
//	db, err := nasc.Get[Database](n, "replica")
//
// A request without qualifier returns the first component of the type in
// insertion order (see Config.DefaultLookup for the exact matching mode).
// Ready values can be put into the registry with Add, the constructor is not
// called for them then.
//
// # Cycles and failures
//
// A (type, qualifier) pair is marked in-progress before its dependencies are
// resolved, so a dependency cycle is reported as CyclicDependencyError instead
// of recursing forever. Errors are typed, use errors.As to inspect them:
//
//	var cycle *nasc.CyclicDependencyError
//	if errors.As(err, &cycle) {
//	    log.Fatal("wiring defect: ", cycle.Path)
//	}
//
// # Listeners
//
// AddPreInsertListener and AddPostInsertListener let collaborators observe
// every component put into the registry, either by Add or by construction.
//
// # Observability
//
// The registry logs through log4g. WithMetrics reports constructions and
// failures to Prometheus collectors, and every construction runs in an
// OpenTelemetry span. Use GetContext to attach the spans to a request trace.
//
// # Thread Safety
//
// Registry calls are serialized by a lock, components are constructed exactly
// once even under concurrent requests. A constructor, hook or listener calling
// back into the registry gets ReentrantCallError from Declare, Add, Get and
// AutoWire. Has, Qualifiers and Components may be called from them.
package nasc
