package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/optspec/internal/app"
	"github.com/vk/optspec/internal/codec"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/session"
	"github.com/vk/optspec/internal/spec"
)

// Harness bundles a wired application with the pieces system tests poke
// at directly.
type Harness struct {
	App   *app.App
	Store *session.Store
	Logs  *app.SafeBuffer
	// Ctx carries the app logger, so store operations run under it log
	// into Logs.
	Ctx context.Context
}

// SetupHarness creates an app around the given capability modules. With no
// modules the compiled-in core set is registered. Logs are captured at
// debug level.
func SetupHarness(t *testing.T, modules ...registry.Module) *Harness {
	t.Helper()

	cfg, err := app.NewConfig(app.Config{
		ListenAddr: ":0",
		LogFormat:  "text",
		LogLevel:   "debug",
	})
	require.NoError(t, err)

	testApp, logs := app.SetupAppTest(t, cfg, modules...)
	ctx := ctxlog.WithLogger(context.Background(), testApp.Logger())
	return &Harness{App: testApp, Store: testApp.Store(), Logs: logs, Ctx: ctx}
}

// CreateSessionFromYAML parses a YAML document and registers a session
// for it.
func (h *Harness) CreateSessionFromYAML(t *testing.T, doc string) *session.Session {
	t.Helper()
	sp := h.ParseYAML(t, doc)
	return h.Store.Create(h.Ctx, sp)
}

// ParseYAML parses a YAML specification document, failing the test on any
// config error.
func (h *Harness) ParseYAML(t *testing.T, doc string) *spec.Specification {
	t.Helper()
	sp, err := codec.Parse(context.Background(), []byte(doc), codec.FormatYAML)
	require.NoError(t, err)
	return sp
}
