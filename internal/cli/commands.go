package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"channel-scheduler/internal/dropzone"
	"channel-scheduler/internal/editor"
	"channel-scheduler/internal/mutate"
	"channel-scheduler/internal/tree"
)

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				return app.render(s.Tree(), result{})
			})
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var (
		parent string
		n      tree.Node
		off    bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a channel, or a playlist or bucket under --parent.",
		Example: `
schedctl add Kids
schedctl add Cartoons --parent Kids --schedule "sat 08:00"
schedctl add Intro --parent Cartoons --content media/intro`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n.Name = args[0]
			}
			n.Active = !off
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				id, out, err := s.AddChild(ctx, parent, n)
				return app.finish(s, result{ID: id}, out, err)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent id; empty adds a channel.")
	cmd.Flags().StringVar(&n.Schedule, "schedule", "", "Schedule expression.")
	cmd.Flags().StringVar(&n.ChannelRef, "channel-ref", "", "Channel definition (channels only).")
	cmd.Flags().StringVar(&n.CarouselKind, "carousel-kind", "", "Carousel kind (playlists only).")
	cmd.Flags().StringVar(&n.CarouselLabel, "carousel-label", "", "Carousel label (playlists only).")
	cmd.Flags().StringVar(&n.ContentRef, "content", "", "Content reference (buckets only).")
	cmd.Flags().BoolVar(&off, "inactive", false, "Create the node switched off.")
	return cmd
}

// newMoveCmd replays one drag gesture: grab ids, hover --over at height --y,
// drop. Rows are laid out as a fixed-height grid.
func newMoveCmd(app *App) *cobra.Command {
	var (
		over      string
		y         float64
		rowHeight float64
		collapsed []string
	)
	cmd := &cobra.Command{
		Use:   "move <id>...",
		Short: "Drag nodes over a row and drop them.",
		Long: strings.TrimSpace(`
Drag the given nodes (the first one is the grabbed row) over the row of --over
with the pointer at height --y, then drop. Rows are --row-height tall and laid
out top-down in display order; --collapsed hides the children of the listed
nodes.`),
		Example: `
schedctl move Evening --over Live --y 62
schedctl move Headlines Weather --over Recap --y 55 --collapsed Sports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if over == "" {
				return fmt.Errorf("--over is required")
			}
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				s.SetView(dropzone.NewGrid(s.Tree(), rowHeight, collapsed...))
				if err := s.OnDragStart(args); err != nil {
					return err
				}
				tg, err := s.OnDragMove(over, y)
				if err != nil {
					s.OnDragCancel()
					return err
				}
				out, err := s.OnDragEnd(ctx)
				return app.finish(s, result{Target: &tg}, out, err)
			})
		},
	}
	cmd.Flags().StringVar(&over, "over", "", "Id of the hovered row.")
	cmd.Flags().Float64Var(&y, "y", 0, "Pointer height.")
	cmd.Flags().Float64Var(&rowHeight, "row-height", 10, "Height of one row.")
	cmd.Flags().StringSliceVar(&collapsed, "collapsed", nil, "Ids of collapsed nodes.")
	return cmd
}

func newPasteCmd(app *App) *cobra.Command {
	var (
		from, to string
		cut      bool
		remaps   []string
	)
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Copy (or cut) --from and paste it at --to.",
		Example: `
schedctl paste --from Morning --to Evening
schedctl paste --from Weather --to Live --cut
schedctl paste --from News --to Sports --remap Headlines=sports/top`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return fmt.Errorf("--from and --to are required")
			}
			remap, err := parseRemap(remaps)
			if err != nil {
				return err
			}
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				clip := s.Copy
				if cut {
					clip = s.Cut
				}
				if err := clip(from); err != nil {
					return err
				}
				out, err := s.PasteRemapped(ctx, to, remap)
				return app.finish(s, result{}, out, err)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Id of the node to copy.")
	cmd.Flags().StringVar(&to, "to", "", "Id of the paste target.")
	cmd.Flags().BoolVar(&cut, "cut", false, "Remove the source after pasting.")
	cmd.Flags().StringSliceVar(&remaps, "remap", nil,
		"Retarget a bucket of a channel pasted onto a channel: <bucket-id>=<content>[:<name>].")
	return cmd
}

func parseRemap(pairs []string) (map[string]mutate.BucketRemap, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]mutate.BucketRemap, len(pairs))
	for _, pair := range pairs {
		id, rest, ok := strings.Cut(pair, "=")
		if !ok || id == "" || rest == "" {
			return nil, fmt.Errorf("invalid --remap %q", pair)
		}
		content, name, _ := strings.Cut(rest, ":")
		out[id] = mutate.BucketRemap{ContentRef: content, Name: name}
	}
	return out, nil
}

func newDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Paste a copy of a node right after it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				out, err := s.Duplicate(ctx, args[0])
				return app.finish(s, result{}, out, err)
			})
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete nodes and everything below them.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				out, err := s.DeleteSelected(ctx, args)
				return app.finish(s, result{}, out, err)
			})
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a node; clashing names get a numeric suffix.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				out, err := s.Rename(ctx, args[0], args[1])
				return app.finish(s, result{}, out, err)
			})
		},
	}
}

func newActiveCmd(app *App, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: fmt.Sprintf("Switch nodes %s.", map[bool]string{true: "on", false: "off"}[active]),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				out, err := s.SetActive(ctx, args, active)
				return app.finish(s, result{}, out, err)
			})
		},
	}
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id> <expression>",
		Short: "Set the schedule expression of a node; an empty expression clears it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				out, err := s.SetSchedule(ctx, args[0], args[1])
				return app.finish(s, result{}, out, err)
			})
		},
	}
}
