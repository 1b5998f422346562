package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"channel-scheduler/internal/tree"
)

// PrettyPrint renders the schedule as an indented, colored outline.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
}

const idWidth = 38

var glyphs = map[tree.NodeType]string{
	tree.TypeChannel:  "■",
	tree.TypePlaylist: "▸",
	tree.TypeBucket:   "·",
}

func (pp *PrettyPrint) Tree(t *tree.Tree) {
	if t.Len() == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintln(pp.Out, " no channels")
		return
	}

	y := color.New(color.FgHiYellow, color.Faint)
	faint := color.New(color.Faint)

	t.Walk(func(n *tree.Node, depth int) bool {
		if pp.ShowID {
			id := n.ID
			if len(id) < idWidth {
				id += strings.Repeat(" ", idWidth-len(id))
			}
			_, _ = y.Fprint(pp.Out, id)
		}
		_, _ = fmt.Fprint(pp.Out, strings.Repeat("  ", depth))
		_, _ = nameColor(n).Fprintf(pp.Out, "%s %s", glyphs[n.Type], n.Name)

		var extra []string
		if n.Schedule != "" {
			extra = append(extra, "@ "+n.Schedule)
		}
		if n.ChannelRef != "" {
			extra = append(extra, "ref "+n.ChannelRef)
		}
		if n.CarouselKind != "" || n.CarouselLabel != "" {
			extra = append(extra, strings.TrimSpace("carousel "+n.CarouselKind+" "+n.CarouselLabel))
		}
		if n.ContentRef != "" {
			extra = append(extra, "-> "+n.ContentRef)
		}
		if !n.Active {
			extra = append(extra, "off")
		}
		if len(extra) > 0 {
			_, _ = faint.Fprintf(pp.Out, "  (%s)", strings.Join(extra, ", "))
		}
		_, _ = fmt.Fprintln(pp.Out)
		return true
	})
}

func nameColor(n *tree.Node) *color.Color {
	var c *color.Color
	switch n.Type {
	case tree.TypeChannel:
		c = color.New(color.Bold)
	case tree.TypePlaylist:
		c = color.New(color.FgCyan)
	default:
		c = color.New()
	}
	if !n.Active {
		c.Add(color.Faint)
	}
	return c
}
