package nasc

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	n := New(WithMetrics(m))
	declareBasics(t, n)
	require.NoError(t, Add[Database](n, &MockDB{name: "added"}, "added"))

	_, err := Get[*UserService](n)
	require.NoError(t, err)
	_, err = Get[*UserService](n)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Constructed.WithLabelValues("*nasc.UserService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Constructed.WithLabelValues("nasc.Logger")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Added.WithLabelValues("nasc.Database")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_Failures(t *testing.T) {
	m := NewMetrics("test")
	n := New(WithMetrics(m))
	require.NoError(t, Declare[*CycleA](n, WithConstructor(NewCycleA)))
	require.NoError(t, Declare[*CycleB](n, WithConstructor(NewCycleB)))
	require.NoError(t, Declare[*Greeter](n, WithConstructor(NewGreeterThatFails)))

	_, err := Get[*CycleA](n)
	require.Error(t, err)
	_, err = Get[*Greeter](n)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("*nasc.CycleA", "cycle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("*nasc.CycleB", "dependency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("*nasc.CycleA", "dependency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("*nasc.Greeter", "constructor")))
}

func TestMetrics_RegisterTwice(t *testing.T) {
	m := NewMetrics("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))
}

func TestWithMetrics_Nil(t *testing.T) {
	assert.Panics(t, func() { New(WithMetrics(nil)) })
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "no_constructor", failureReason(&NoConstructorError{}))
	assert.Equal(t, "hook", failureReason(&PostConstructionError{}))
	assert.Equal(t, "listener", failureReason(&ListenerError{}))
	assert.Equal(t, "other", failureReason(errBoom))
}
