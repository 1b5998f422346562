package cli

import (
	"encoding/json"
	"fmt"
	"sync"

	"channel-scheduler/internal/dropzone"
	"channel-scheduler/internal/editor"
	"channel-scheduler/internal/tree"
)

// result is what a command reports in json format.
type result struct {
	Outcome string           `json:"outcome,omitempty"`
	ID      string           `json:"id,omitempty"`
	Target  *dropzone.Target `json:"target,omitempty"`
	Tree    []*tree.Node     `json:"tree"`
}

var renderMu sync.Mutex

// render prints t, preceded by the command outcome when there is one.
func (app *App) render(t *tree.Tree, r result) error {
	renderMu.Lock()
	defer renderMu.Unlock()

	if app.v.GetString("format") == "json" {
		r.Tree = t.Roots()
		if r.Tree == nil {
			r.Tree = []*tree.Node{}
		}
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(app.Out, string(b))
		return err
	}

	if r.Outcome != "" {
		line := r.Outcome
		if r.ID != "" {
			line += " " + r.ID
		}
		_, _ = fmt.Fprintln(app.Out, line)
	}
	pp := &PrettyPrint{Out: app.Out, ShowID: app.v.GetBool("show-id")}
	pp.Tree(t)
	return nil
}

// finish renders the session tree after a command. A failed sync still
// prints the reconciled tree before the error is returned.
func (app *App) finish(s *editor.Session, r result, out editor.Outcome, err error) error {
	r.Outcome = out.String()
	if rerr := app.render(s.Tree(), r); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
