// Package cli implements schedctl, a command line front end for the editing
// session.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"channel-scheduler/internal/editor"
	"channel-scheduler/internal/remote"
	"channel-scheduler/internal/syncer"
	"channel-scheduler/internal/tree"
)

type App struct {
	v   *viper.Viper
	Out io.Writer
}

func NewRootCmd() *cobra.Command {
	app := &App{v: viper.New(), Out: os.Stdout}

	cmd := &cobra.Command{
		Use:          "schedctl",
		Short:        "Edit the channel schedule tree from the command line.",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Print the schedule
  schedctl tree

  # Drop playlist P over the first bucket of the next channel
  schedctl move P --over b1x --y 71

  # Copy a playlist next to another one
  schedctl paste --from Morning --to Evening

  # Follow changes made elsewhere
  schedctl watch
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("server", "http://localhost:3010", "Base URL of the schedule service.")
	pf.String("realtime", "ws://localhost:3004/ws", "Websocket URL of the realtime service.")
	pf.Duration("cooldown", editor.DefaultCooldown, "Quiet period after a commit.")
	pf.Duration("debounce", editor.DefaultDebounce, "Delay that coalesces external change notifications.")
	pf.String("format", "tree", "Output format (tree|json).")
	pf.Bool("show-id", false, "Show node ids in tree output.")
	pf.Bool("memory", false, "Work on an in-process demo schedule instead of the service.")
	_ = app.v.BindPFlags(pf)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.Out = cmd.OutOrStdout()
		return app.loadConfig()
	}

	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newPasteCmd(app))
	cmd.AddCommand(newDuplicateCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newActiveCmd(app, "activate", true))
	cmd.AddCommand(newActiveCmd(app, "deactivate", false))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

// loadConfig reads .schedctl.yaml from SCHEDCTL_CONFIG_PATH or the working
// directory. Flags win over SCHEDCTL_* variables, which win over the file.
func (app *App) loadConfig() error {
	v := app.v
	v.SetConfigName(".schedctl")
	v.SetEnvPrefix("SCHEDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("SCHEDCTL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	switch f := v.GetString("format"); f {
	case "tree", "json":
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
	return nil
}

func (app *App) store() syncer.Store {
	if app.v.GetBool("memory") {
		return syncer.NewMemoryStore(demoTree().Flatten()...)
	}
	return remote.New(app.v.GetString("server"))
}

// openSession loads the schedule into a fresh editing session.
func (app *App) openSession(ctx context.Context, opts ...syncer.Option) (*editor.Session, error) {
	s := editor.New(syncer.New(app.store(), opts...), editor.Options{
		Cooldown: app.v.GetDuration("cooldown"),
		Debounce: app.v.GetDuration("debounce"),
	})
	if err := s.Load(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return s, nil
}

// withSession runs fn against a loaded session with a bounded context.
func (app *App) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *editor.Session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	s, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func demoTree() *tree.Tree {
	return tree.Build(
		tree.Channel("News",
			tree.Playlist("Morning", tree.Bucket("Headlines"), tree.Bucket("Weather")),
			tree.Playlist("Evening", tree.Bucket("Recap")),
		),
		tree.Channel("Sports",
			tree.Playlist("Live", tree.Bucket("Scores")),
			tree.Playlist("Highlights"),
		),
	)
}
