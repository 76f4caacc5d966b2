package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type recordingShutdowner struct {
	calls chan struct{}
}

func (s *recordingShutdowner) Shutdown(...fx.ShutdownOption) error {
	s.calls <- struct{}{}
	return nil
}

func runApp(t *testing.T, ctx context.Context, action cli.ActionFunc) (*fxtest.Lifecycle, *recordingShutdowner) {
	t.Helper()

	lc := fxtest.NewLifecycle(t)
	shutdowner := &recordingShutdowner{calls: make(chan struct{}, 1)}

	Run(Params{
		Args:       []string{"roadwork", "work"},
		Commands:   []*cli.Command{{Name: "work", Action: action}},
		Ctx:        ctx,
		Lifecycle:  lc,
		Shutdowner: shutdowner,
		Version:    &Version{Version: "test"},
	})

	require.NoError(t, lc.Start(context.Background()))
	return lc, shutdowner
}

func TestRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		lc, shutdowner := runApp(t, context.Background(), func(context.Context, *cli.Command) error {
			return nil
		})

		<-shutdowner.calls
		require.NoError(t, lc.Stop(context.Background()))
	})

	t.Run("command error fails stop", func(t *testing.T) {
		lc, shutdowner := runApp(t, context.Background(), func(context.Context, *cli.Command) error {
			return errors.New("migration failed")
		})

		<-shutdowner.calls
		require.ErrorContains(t, lc.Stop(context.Background()), "migration failed")
	})

	t.Run("interrupted command fails stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})

		lc, _ := runApp(t, ctx, func(ctx context.Context, _ *cli.Command) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})

		<-started
		cancel()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		require.ErrorIs(t, lc.Stop(stopCtx), context.Canceled)
	})
}
