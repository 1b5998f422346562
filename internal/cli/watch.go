package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"channel-scheduler/internal/remote"
	"channel-scheduler/internal/syncer"
	"channel-scheduler/internal/tree"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the schedule and reprint it whenever it changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.v.GetBool("memory") {
				return fmt.Errorf("watch needs the schedule service; drop --memory")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, err := app.openSession(ctx, syncer.WithOnApply(func(t *tree.Tree) {
				_ = app.render(t, result{})
			}))
			if err != nil {
				return err
			}
			defer s.Close()

			err = remote.Watch(ctx, app.v.GetString("realtime"), func(remote.Event) {
				s.NotifyExternalChange()
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
