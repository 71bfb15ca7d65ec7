package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestDispatcher(t *testing.T) (*Dispatcher[string], *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	d, err := New[string](log, noop.Meter{})
	require.NoError(t, err)
	return d, &buf
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event[string]
	d.Register("move", func(_ context.Context, e Event[string]) (any, error) {
		got = e
		return "result", nil
	})

	result, err := d.Dispatch(context.Background(), "move", "Warrior")
	require.NoError(t, err)
	assert.Equal(t, "result", result)
	assert.Equal(t, "move", got.Command)
	assert.Equal(t, "Warrior", got.Payload)
	assert.False(t, got.Timestamp.IsZero())
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(context.Background(), "retreat", "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDispatcher_HandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	boom := errors.New("boom")
	d.Register("move", func(context.Context, Event[string]) (any, error) {
		return nil, boom
	})

	_, err := d.Dispatch(context.Background(), "move", "")
	assert.ErrorIs(t, err, boom)
}

func TestDispatcher_Logged(t *testing.T) {
	d, buf := newTestDispatcher(t)
	d.Register("endTurn", func(context.Context, Event[string]) (any, error) {
		return nil, nil
	}, Logged())
	d.Register("move", func(context.Context, Event[string]) (any, error) {
		return nil, errors.New("blocked")
	}, Logged())

	_, err := d.Dispatch(context.Background(), "endTurn", "")
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), "move", "")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"handling event"`)
	assert.Contains(t, out, `"message":"event complete"`)
	assert.Contains(t, out, `"message":"event failed"`)
	assert.Contains(t, out, `"error":"blocked"`)
}

func TestDispatcher_NotLoggedByDefault(t *testing.T) {
	d, buf := newTestDispatcher(t)
	d.Register("move", func(context.Context, Event[string]) (any, error) {
		return nil, nil
	})

	_, err := d.Dispatch(context.Background(), "move", "")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestDispatcher_Commands(t *testing.T) {
	d, _ := newTestDispatcher(t)
	noopHandler := func(context.Context, Event[string]) (any, error) { return nil, nil }
	d.Register("move", noopHandler)
	d.Register("endTurn", noopHandler)

	assert.True(t, d.HasHandler("move"))
	assert.False(t, d.HasHandler("retreat"))
	assert.Equal(t, []string{"endTurn", "move"}, d.Commands())
}

func TestNew_GlobalMeter(t *testing.T) {
	d, err := New[int](zerolog.Nop(), nil)
	require.NoError(t, err)
	d.Register("count", func(_ context.Context, e Event[int]) (any, error) {
		return e.Payload + 1, nil
	})
	got, err := d.Dispatch(context.Background(), "count", 41)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
