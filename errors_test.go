package nasc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	dbType := TypeOf[Database]()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "duplicate",
			err:  &DuplicateComponentError{Type: dbType, Qualifier: "main"},
			want: "the container already contains a nasc.Database instance with qualifier 'main'",
		},
		{
			name: "cycle",
			err:  &CyclicDependencyError{Type: dbType, Path: []string{"nasc.Database", "nasc.Database"}},
			want: "cyclic dependency detected: nasc.Database is currently being created: nasc.Database -> nasc.Database",
		},
		{
			name: "no constructor",
			err:  &NoConstructorError{Type: dbType},
			want: "no constructors declared for nasc.Database",
		},
		{
			name: "parameter",
			err:  &DependencyResolutionError{Type: dbType, Param: 2, Cause: errBoom},
			want: "unable to resolve dependencies for nasc.Database, parameter #2: boom",
		},
		{
			name: "field",
			err:  &DependencyResolutionError{Type: dbType, Qualifier: "x", Param: -1, Field: "Cache", Cause: errBoom},
			want: "unable to resolve dependencies for nasc.Database with qualifier 'x', field Cache: boom",
		},
		{
			name: "not a component",
			err:  &NotAComponentError{Type: dbType},
			want: "type nasc.Database is not declared as a component",
		},
		{
			name: "null component",
			err:  &NullComponentError{Type: dbType, Qualifier: "x"},
			want: `nil component for type nasc.Database (qualifier="x")`,
		},
		{
			name: "listener",
			err:  &ListenerError{Type: dbType, Phase: "post", Cause: errBoom},
			want: "post-insert listener failed for nasc.Database: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	errs := []error{
		&DependencyResolutionError{Cause: errBoom},
		&ConstructionError{Cause: errBoom},
		&PostConstructionError{Cause: errBoom},
		&ListenerError{Cause: errBoom},
	}

	for _, err := range errs {
		assert.True(t, errors.Is(err, errBoom), "%T", err)
		assert.True(t, errors.Is(errors.Wrap(err, "outer"), errBoom), "%T", err)
	}
}

func TestErrorChain_Nested(t *testing.T) {
	n := New()
	assert.NoError(t, Declare[Logger](n, WithConstructor(NewConsoleLogger)))
	assert.NoError(t, Declare[Database](n, WithConstructor(func() (*MockDB, error) { return nil, errBoom })))
	assert.NoError(t, Declare[*UserService](n, WithConstructor(NewUserService)))

	_, err := Get[*UserService](n)
	var dre *DependencyResolutionError
	var ce *ConstructionError
	assert.True(t, errors.As(err, &dre))
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, TypeOf[Database](), ce.Type)
	assert.True(t, errors.Is(err, errBoom))
	assert.Contains(t, err.Error(), "constructor returned error: boom")
}
