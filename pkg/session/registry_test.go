package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/TechXTT/oraconsole/internal/driver/drivertest"
	"github.com/TechXTT/oraconsole/pkg/session"
)

func newRegistry(t *testing.T, connector *drivertest.Connector, opts ...session.Option) *session.Registry {
	t.Helper()
	opts = append([]session.Option{session.WithLogger(zaptest.NewLogger(t))}, opts...)
	return session.NewRegistry(connector, opts...)
}

func TestAllocate_EnforcesCap(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector)
	ctx := context.Background()

	first, err := reg.Allocate(ctx)
	require.NoError(t, err)
	second, err := reg.Allocate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = reg.Allocate(ctx)
	require.ErrorIs(t, err, session.ErrCapacityExceeded)
	assert.EqualValues(t, 2, connector.Stats.Opens.Load())

	reg.Release(first)

	third, err := reg.Allocate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, []session.ID{second, third}, reg.List())
}

func TestAllocate_ConcurrentCallersNeverExceedCap(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector)

	const callers = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Allocate(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, session.ErrCapacityExceeded)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, session.DefaultMaxSessions, ok)
	assert.Equal(t, callers-session.DefaultMaxSessions, rejected)
	assert.Equal(t, session.DefaultMaxSessions, reg.Len())
	assert.EqualValues(t, session.DefaultMaxSessions, connector.Stats.Opens.Load())
}

func TestAllocate_OpenFailureFreesSlot(t *testing.T) {
	connector := &drivertest.Connector{OpenErr: errors.New("ORA-01017: invalid username/password; logon denied")}
	reg := newRegistry(t, connector)

	for i := 0; i < 3; i++ {
		_, err := reg.Allocate(context.Background())
		require.ErrorIs(t, err, session.ErrOpenFailed)
		assert.Contains(t, err.Error(), "ORA-01017")
	}
	assert.Zero(t, reg.Len())

	connector.OpenErr = nil
	_, err := reg.Allocate(context.Background())
	require.NoError(t, err)
}

func TestAllocate_SkipsCollidingIDs(t *testing.T) {
	ids := []session.ID{"a", "a", "b"}
	next := 0
	gen := func() session.ID {
		id := ids[next]
		next++
		return id
	}
	reg := newRegistry(t, &drivertest.Connector{}, session.WithIDGenerator(gen))

	first, err := reg.Allocate(context.Background())
	require.NoError(t, err)
	second, err := reg.Allocate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, session.ID("a"), first)
	assert.Equal(t, session.ID("b"), second)
}

func TestPing(t *testing.T) {
	reg := newRegistry(t, &drivertest.Connector{})
	ctx := context.Background()

	id, err := reg.Allocate(ctx)
	require.NoError(t, err)

	ok, err := reg.Ping(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	reg.Release(id)

	ok, err = reg.Ping(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reg.Ping(ctx, session.NewID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing_TransportFailureKeepsSession(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector)
	ctx := context.Background()

	id, err := reg.Allocate(ctx)
	require.NoError(t, err)

	connector.PingErr = errors.New("ORA-03113: end-of-file on communication channel")
	ok, err := reg.Ping(ctx, id)
	assert.False(t, ok)
	require.ErrorIs(t, err, session.ErrExecutionFailed)
	assert.Contains(t, err.Error(), "ORA-03113")

	var execErr *session.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "ping", execErr.Op)
	assert.Equal(t, id, execErr.Session)

	assert.Equal(t, []session.ID{id}, reg.List())
}

func TestRelease_QueuedExecuteSeesUnknownSession(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	var calls atomic.Int64
	connector := &drivertest.Connector{
		Handler: func(string, map[string]any) (*drivertest.Outcome, error) {
			if calls.Add(1) == 1 {
				close(entered)
				<-unblock
			}
			return drivertest.Cursors(drivertest.NewCursor("1").AddRow(1)), nil
		},
	}
	reg := newRegistry(t, connector)
	ctx := context.Background()

	id, err := reg.Allocate(ctx)
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() {
		_, err := reg.Execute(ctx, id, "SELECT 1 FROM DUAL")
		first <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := reg.Execute(ctx, id, "SELECT 1 FROM DUAL")
		second <- err
	}()
	// Give the second call time to queue behind the first.
	time.Sleep(20 * time.Millisecond)

	released := make(chan struct{})
	go func() {
		reg.Release(id)
		close(released)
	}()
	require.Eventually(t, func() bool { return len(reg.List()) == 0 }, time.Second, time.Millisecond)

	ok, err := reg.Ping(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	close(unblock)
	require.NoError(t, <-first)
	require.ErrorIs(t, <-second, session.ErrSessionNotFound)
	<-released

	assert.EqualValues(t, 1, connector.Stats.Executes.Load())
	assert.EqualValues(t, 1, connector.Stats.Closes.Load())
}

func TestPing_QueuedBehindReleaseSeesUnknownSession(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	connector := &drivertest.Connector{
		Handler: func(string, map[string]any) (*drivertest.Outcome, error) {
			close(entered)
			<-unblock
			return drivertest.Affected(0), nil
		},
	}
	reg := newRegistry(t, connector)
	ctx := context.Background()

	id, err := reg.Allocate(ctx)
	require.NoError(t, err)

	executed := make(chan error, 1)
	go func() {
		_, err := reg.Execute(ctx, id, "BEGIN NULL; END;")
		executed <- err
	}()
	<-entered

	pinged := make(chan bool, 1)
	go func() {
		ok, _ := reg.Ping(ctx, id)
		pinged <- ok
	}()
	time.Sleep(20 * time.Millisecond)

	released := make(chan struct{})
	go func() {
		reg.Release(id)
		close(released)
	}()
	require.Eventually(t, func() bool { return len(reg.List()) == 0 }, time.Second, time.Millisecond)

	close(unblock)
	require.NoError(t, <-executed)
	assert.False(t, <-pinged)
	<-released
	assert.Zero(t, connector.Stats.Pings.Load())
}

func TestRelease_Idempotent(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector)

	id, err := reg.Allocate(context.Background())
	require.NoError(t, err)

	reg.Release(id)
	reg.Release(id)
	reg.Release(session.NewID())

	assert.Empty(t, reg.List())
	assert.EqualValues(t, 1, connector.Stats.Closes.Load())
	assert.True(t, connector.Conns()[0].Closed())
}

func TestRelease_CloseFailureStillForgetsSession(t *testing.T) {
	connector := &drivertest.Connector{CloseErr: errors.New("ORA-03135: connection lost contact")}
	reg := newRegistry(t, connector)

	id, err := reg.Allocate(context.Background())
	require.NoError(t, err)

	reg.Release(id)

	ok, err := reg.Ping(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestClose_ReleasesEverything(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector, session.WithMaxSessions(3))

	for i := 0; i < 3; i++ {
		_, err := reg.Allocate(context.Background())
		require.NoError(t, err)
	}

	require.NoError(t, reg.Close())
	assert.Zero(t, reg.Len())
	assert.EqualValues(t, 3, connector.Stats.Closes.Load())
}

func TestClose_ReportsCloseErrors(t *testing.T) {
	connector := &drivertest.Connector{}
	reg := newRegistry(t, connector)

	for i := 0; i < 2; i++ {
		_, err := reg.Allocate(context.Background())
		require.NoError(t, err)
	}

	connector.CloseErr = errors.New("boom")
	err := reg.Close()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Zero(t, reg.Len())
}

func TestParseID(t *testing.T) {
	id := session.NewID()

	parsed, err := session.ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	braced, err := session.ParseID(fmt.Sprintf("{%s}", id))
	require.NoError(t, err)
	assert.Equal(t, id, braced)

	_, err = session.ParseID("not-a-session")
	require.ErrorIs(t, err, session.ErrInvalidID)
}
