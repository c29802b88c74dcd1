package dumper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtriage/internal/channel"
	"devtriage/internal/domain"
)

// fakeDevice answers `settings list` commands from canned output
type fakeDevice struct {
	outputs  map[string]string
	failures map[string]error
	calls    []string
}

func (f *fakeDevice) Execute(ctx context.Context, cmd string) (string, error) {
	f.calls = append(f.calls, cmd)
	if err, ok := f.failures[cmd]; ok {
		return "", err
	}
	return f.outputs[cmd], nil
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		outputs: map[string]string{
			"settings list system": "screen_brightness=102\nvolume_ring=5\n",
			"settings list secure": "package_verifier_user_consent=1\nandroid_id=abc123\n",
			"settings list global": "package_verifier_enable=0\nupload_apk_enable=1\n",
		},
		failures: map[string]error{},
	}
}

func TestDump(t *testing.T) {
	dev := newFakeDevice()

	snapshot, err := Dump(context.Background(), dev)
	require.NoError(t, err)

	assert.Len(t, snapshot, 3)
	assert.NoError(t, snapshot.Validate())
	assert.Equal(t, domain.Settings{"screen_brightness": "102", "volume_ring": "5"}, snapshot[domain.NamespaceSystem])
	assert.Equal(t, "1", snapshot[domain.NamespaceSecure]["package_verifier_user_consent"])
	assert.Equal(t, "0", snapshot[domain.NamespaceGlobal]["package_verifier_enable"])

	assert.Equal(t, []string{
		"settings list system",
		"settings list secure",
		"settings list global",
	}, dev.calls)
}

func TestDumpEmptyNamespace(t *testing.T) {
	dev := newFakeDevice()
	dev.outputs["settings list system"] = ""

	snapshot, err := Dump(context.Background(), dev)
	require.NoError(t, err)
	assert.Len(t, snapshot, 3)
	assert.Empty(t, snapshot[domain.NamespaceSystem])
}

func TestDumpChannelFailure(t *testing.T) {
	for _, ns := range domain.Namespaces() {
		t.Run(string(ns), func(t *testing.T) {
			dev := newFakeDevice()
			cause := errors.New("device offline")
			dev.failures[Command(ns)] = cause

			snapshot, err := Dump(context.Background(), dev)
			require.Error(t, err)
			assert.Nil(t, snapshot)

			var chErr *ChannelError
			require.ErrorAs(t, err, &chErr)
			assert.Equal(t, ns, chErr.Namespace)
			assert.Equal(t, Command(ns), chErr.Command)
			assert.ErrorIs(t, err, cause)
			assert.Contains(t, err.Error(), fmt.Sprintf("%q", Command(ns)))

			// Nothing after the failing namespace is attempted
			assert.Equal(t, Command(ns), dev.calls[len(dev.calls)-1])
		})
	}
}

func TestDumpParseFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.outputs["settings list secure"] = "cmd: Can't find service: settings\n"

	snapshot, err := Dump(context.Background(), dev)
	require.Error(t, err)
	assert.Nil(t, snapshot)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, domain.NamespaceSecure, parseErr.Namespace)
	assert.Contains(t, err.Error(), "failed to parse settings from device")
	assert.Len(t, dev.calls, 2)
}

func TestDumpCustomParser(t *testing.T) {
	var seen []string
	d := New(func(output string) (domain.Settings, error) {
		seen = append(seen, output)
		return domain.Settings{"parsed": output}, nil
	})

	snapshot, err := d.Dump(context.Background(), channel.Func(func(ctx context.Context, cmd string) (string, error) {
		return cmd, nil
	}))
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Equal(t, "settings list global", snapshot[domain.NamespaceGlobal]["parsed"])
}

func TestDumpCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	ch := channel.Func(func(ctx context.Context, cmd string) (string, error) {
		calls++
		cancel()
		return "a=1\n", nil
	})

	snapshot, err := Dump(ctx, ch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snapshot)
	assert.Equal(t, 1, calls)
}

func TestDumpPropagatesInFlightCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := channel.Func(func(ctx context.Context, cmd string) (string, error) {
		cancel()
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := Dump(ctx, ch)
	var chErr *ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.NamespaceSystem, chErr.Namespace)
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "settings list secure", Command(domain.NamespaceSecure))
}
