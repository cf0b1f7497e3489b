package console

import (
	"errors"
	"testing"

	"ui-harness/internal/config"
	"ui-harness/internal/ports/portstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type stubShutdowner struct {
	calls int
}

func (s *stubShutdowner) Shutdown(_ ...fx.ShutdownOption) error {
	s.calls++

	return nil
}

func newTestInterface(shutdowner fx.Shutdowner) *Interface {
	return NewInterface(Params{
		Config:     &config.Config{AppConfig: &config.AppConfig{}},
		Logger:     zap.NewNop(),
		Driver:     portstest.NewFakeDriver(),
		Shutdowner: shutdowner,
	})
}

func TestExitCommandSignalsLoopExit(t *testing.T) {
	i := newTestInterface(&stubShutdowner{})

	err := i.handleCommand("exit")
	assert.True(t, errors.Is(err, errExit))
}

func TestRequestShutdownDelegatesToLifecycle(t *testing.T) {
	sd := &stubShutdowner{}
	i := newTestInterface(sd)

	require.NoError(t, i.requestShutdown())
	assert.Equal(t, 1, sd.calls)

	// Repeated requests are a no-op.
	require.NoError(t, i.requestShutdown())
	assert.Equal(t, 1, sd.calls)
}

func TestStopReturnsControlToCaller(t *testing.T) {
	sd := &stubShutdowner{}
	i := newTestInterface(sd)

	// Stop is the lifecycle hook side; it must not re-enter the shutdowner
	// and must leave the caller free to close the browser afterwards.
	require.NoError(t, i.Stop())
	require.NoError(t, i.Stop())

	assert.Equal(t, 0, sd.calls)

	select {
	case <-i.ctx.Done():
	default:
		t.Fatal("context not cancelled after Stop")
	}
}
