package node

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodemesh/core"
	"github.com/hupe1980/nodemesh/internal/testutil"
	"github.com/hupe1980/nodemesh/param"
)

func newTestNode(t *testing.T) (*Node, *testutil.RecordingMiddleware) {
	t.Helper()
	mw := testutil.NewRecordingMiddleware()
	n, err := New("test_node", WithMiddleware(mw), WithContext(core.NewContext()))
	require.NoError(t, err)
	return n, mw
}

func TestNew_DefaultGroup(t *testing.T) {
	n, mw := newTestNode(t)

	assert.Equal(t, "test_node", n.Name())
	assert.NotEmpty(t, n.Handle())
	assert.Equal(t, 1, mw.NodeCreates)

	def := n.DefaultCallbackGroup()
	require.NotNil(t, def)
	assert.Equal(t, core.CallbackGroupMutuallyExclusive, def.Type())
	assert.True(t, n.GroupInNode(def))

	assert.Equal(t, Counters{}, n.Counters())
}

func TestNew_RequiresMiddleware(t *testing.T) {
	_, err := New("nomw")
	assert.Error(t, err)
}

func TestNew_MiddlewareFailurePropagated(t *testing.T) {
	mw := testutil.NewRecordingMiddleware()
	boom := errors.New("rmw: out of resources")
	mw.NextErr = boom

	_, err := New("failing", WithMiddleware(mw))
	assert.ErrorIs(t, err, boom)
}

func TestGroupInNode(t *testing.T) {
	n, _ := newTestNode(t)
	other, _ := newTestNode(t)

	g := n.CreateCallbackGroup(core.CallbackGroupReentrant)
	assert.True(t, n.GroupInNode(g))
	assert.False(t, other.GroupInNode(g))

	foreign := other.CreateCallbackGroup(core.CallbackGroupMutuallyExclusive)
	assert.False(t, n.GroupInNode(foreign))
}

func TestGroupInNode_SkipsCollectedGroups(t *testing.T) {
	n, _ := newTestNode(t)

	n.CreateCallbackGroup(core.CallbackGroupReentrant) // dropped immediately
	kept := n.CreateCallbackGroup(core.CallbackGroupReentrant)

	// registry entries for collected groups expire and are skipped; the
	// default group and the retained group survive
	require.Eventually(t, func() bool {
		runtime.GC()
		return len(n.CallbackGroups()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, n.GroupInNode(kept))
	assert.True(t, n.GroupInNode(n.DefaultCallbackGroup()))
}

func TestCreateSubscription_DefaultGroup(t *testing.T) {
	n, mw := newTestNode(t)

	sub, err := n.CreateSubscription("chatter", core.TypeSupport{Name: "std_msgs/String"}, 10, func([]byte) {})
	require.NoError(t, err)
	assert.True(t, sub.Alive())
	assert.Equal(t, core.KindSubscription, sub.Kind())
	assert.Equal(t, "chatter", sub.Topic())
	assert.Equal(t, 10, sub.QueueDepth())

	assert.Equal(t, Counters{Subscriptions: 1}, n.Counters())
	assert.Len(t, n.DefaultCallbackGroup().Subscriptions(), 1)
	assert.Equal(t, 1, mw.SubscriptionCreates)
}

func TestCreateSubscription_TargetGroup(t *testing.T) {
	n, _ := newTestNode(t)
	g := n.CreateCallbackGroup(core.CallbackGroupReentrant)

	sub, err := n.CreateSubscription("chatter", core.TypeSupport{Name: "std_msgs/String"}, 10, func([]byte) {}, WithCallbackGroup(g))
	require.NoError(t, err)

	assert.Len(t, g.Subscriptions(), 1)
	assert.Equal(t, sub.ID(), g.Subscriptions()[0].ID())
	assert.Empty(t, n.DefaultCallbackGroup().Subscriptions())
	assert.Equal(t, Counters{Subscriptions: 1}, n.Counters())
}

func TestCreate_ForeignGroupRejected(t *testing.T) {
	n, mw := newTestNode(t)
	other, _ := newTestNode(t)
	foreign := other.CreateCallbackGroup(core.CallbackGroupMutuallyExclusive)

	ts := core.TypeSupport{Name: "std_msgs/String"}

	_, err := n.CreateSubscription("t", ts, 1, func([]byte) {}, WithCallbackGroup(foreign))
	assert.ErrorIs(t, err, core.ErrGroupNotOwned)

	_, err = n.CreateWallTimer(time.Second, func() {}, WithCallbackGroup(foreign))
	assert.ErrorIs(t, err, core.ErrGroupNotOwned)

	_, err = n.CreateClient("svc", ts, WithCallbackGroup(foreign))
	assert.ErrorIs(t, err, core.ErrGroupNotOwned)

	_, err = n.CreateService("svc", ts, func([]byte) ([]byte, error) { return nil, nil }, WithCallbackGroup(foreign))
	assert.ErrorIs(t, err, core.ErrGroupNotOwned)

	// nothing registered, no counter moved, and no middleware handle was
	// ever created for the rejected entities
	assert.Equal(t, Counters{}, n.Counters())
	assert.Equal(t, 0, mw.EntityCreates())
	assert.Equal(t, 0, foreign.Size())
	assert.Equal(t, 0, n.DefaultCallbackGroup().Size())
}

func TestCreatePublisher_Exempt(t *testing.T) {
	n, mw := newTestNode(t)

	pub, err := n.CreatePublisher("chatter", core.TypeSupport{Name: "std_msgs/String"}, 10)
	require.NoError(t, err)
	assert.Equal(t, "chatter", pub.Topic())
	assert.NotEmpty(t, pub.Handle())
	assert.Equal(t, 1, mw.PublisherCreates)

	// publishers never touch counters or groups
	assert.Equal(t, Counters{}, n.Counters())
	assert.Equal(t, 0, n.DefaultCallbackGroup().Size())
}

func TestCreateWallTimer(t *testing.T) {
	n, mw := newTestNode(t)

	fired := false
	timer, err := n.CreateWallTimer(250*time.Millisecond, func() { fired = true })
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, timer.Period())
	timer.Callback()()
	assert.True(t, fired)

	assert.Equal(t, Counters{Timers: 1}, n.Counters())
	assert.Len(t, n.DefaultCallbackGroup().Timers(), 1)
	// timers are node-local; the middleware is never involved
	assert.Equal(t, 0, mw.EntityCreates())
}

func TestCreateWallTimerSeconds_Truncation(t *testing.T) {
	n, _ := newTestNode(t)

	timer, err := n.CreateWallTimerSeconds(0.25, func() {})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, timer.Period())

	// sub-nanosecond fractions truncate
	timer2, err := n.CreateWallTimerSeconds(1.5e-9, func() {})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(1), timer2.Period())
}

func TestCreateClientAndService(t *testing.T) {
	n, mw := newTestNode(t)
	ts := core.TypeSupport{Name: "example/AddTwoInts"}

	cli, err := n.CreateClient("add", ts)
	require.NoError(t, err)
	assert.Equal(t, "add", cli.ServiceName())

	srv, err := n.CreateService("add", ts, func(req []byte) ([]byte, error) { return req, nil })
	require.NoError(t, err)
	assert.Equal(t, "add", srv.ServiceName())

	assert.Equal(t, Counters{Clients: 1, Services: 1}, n.Counters())
	assert.Len(t, n.DefaultCallbackGroup().Clients(), 1)
	assert.Len(t, n.DefaultCallbackGroup().Services(), 1)
	assert.Equal(t, 1, mw.ClientCreates)
	assert.Equal(t, 1, mw.ServiceCreates)
}

func TestCreate_MiddlewareFailurePropagated(t *testing.T) {
	n, mw := newTestNode(t)
	boom := errors.New("rmw: allocation failed")

	mw.NextErr = boom
	_, err := n.CreateSubscription("t", core.TypeSupport{}, 1, func([]byte) {})
	assert.ErrorIs(t, err, boom)

	// a failed middleware create registers nothing
	assert.Equal(t, Counters{}, n.Counters())
	assert.Equal(t, 0, n.DefaultCallbackGroup().Size())
}

func TestEntityClose_SkippedByGroupNotCounters(t *testing.T) {
	n, _ := newTestNode(t)

	sub, err := n.CreateSubscription("t", core.TypeSupport{}, 1, func([]byte) {})
	require.NoError(t, err)
	require.Len(t, n.DefaultCallbackGroup().Subscriptions(), 1)

	sub.Close()
	assert.False(t, sub.Alive())
	assert.Empty(t, n.DefaultCallbackGroup().Subscriptions())

	// counters are monotonic; closing never decrements
	assert.Equal(t, Counters{Subscriptions: 1}, n.Counters())
}

func TestNode_ParameterAPI(t *testing.T) {
	n, _ := newTestNode(t)

	results := n.SetParameters(param.NewParameter("p", 5))
	require.Len(t, results, 1)
	assert.True(t, results[0].Successful)

	got := n.GetParameters("p")
	require.Len(t, got, 1)
	v, _ := got[0].IntValue()
	assert.Equal(t, int64(5), v)

	descs := n.DescribeParameters("p")
	require.Len(t, descs, 1)
	assert.Equal(t, param.ParameterInteger, descs[0].Type)

	types := n.GetParameterTypes("missing")
	require.Len(t, types, 1)
	assert.Equal(t, param.ParameterNotSet, types[0])

	result := n.SetParametersAtomically(param.NewParameter("a.b", 1), param.NewParameter("a.x", 3))
	assert.True(t, result.Successful)

	listed := n.ListParameters([]string{"a"}, 1)
	require.Len(t, listed, 2)
}

func TestNode_LoadParameterFile(t *testing.T) {
	n, _ := newTestNode(t)

	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("motors:\n  gain: 0.5\n"), 0o600))

	require.NoError(t, n.LoadParameterFile(path))
	got := n.GetParameters("motors.gain")
	require.Len(t, got, 1)
	v, _ := got[0].DoubleValue()
	assert.Equal(t, 0.5, v)

	assert.Error(t, n.LoadParameterFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestNode_UsesDefaultContext(t *testing.T) {
	core.SetDefaultContext(nil)
	t.Cleanup(func() { core.SetDefaultContext(nil) })

	injected := core.NewContext(func(c *core.ContextConfig) { c.DomainID = 42 })
	core.SetDefaultContext(injected)

	n, err := New("ctx_node", WithMiddleware(testutil.NewRecordingMiddleware()))
	require.NoError(t, err)
	assert.Same(t, injected, n.Context())
	assert.Equal(t, 42, n.Context().DomainID())
}
