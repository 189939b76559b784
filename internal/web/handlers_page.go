package web

import (
	"net/http"

	"github.com/JonMunkholm/tidycsv/internal/logging"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/summary"
	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
	"github.com/JonMunkholm/tidycsv/internal/web/templates"
)

var (
	strategyLabels = labels(transform.DropRows, transform.FillMean, transform.FillMedian, transform.FillMode)
	methodLabels   = labels(transform.Normalize, transform.Standardize)
	kindNames      = []string{string(table.KindInt), string(table.KindFloat), string(table.KindString), string(table.KindBool)}
)

func labels[T interface{ Label() string }](vs ...T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Label()
	}
	return out
}

// handlePage renders the page for the caller's session. ?summary=1 adds the
// data summary.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := templates.PageData{
		Strategies: strategyLabels,
		Methods:    methodLabels,
		Kinds:      kindNames,
	}
	if f, ok := popFlash(w, r); ok {
		data.Flash = &templates.Flash{Kind: f.Kind, Text: f.Text, Code: f.Code}
	}

	if sess, err := s.currentSession(w, r, false); err == nil && sess.State() == session.Loaded {
		fillPage(&data, sess, r.URL.Query().Get("summary") != "")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func fillPage(d *templates.PageData, sess *session.Session, withSummary bool) {
	cur := sess.Current()

	d.Loaded = true
	d.FileName = sess.FileName()
	d.Rows = cur.NumRows()
	d.Columns = cur.Names()
	d.NumericColumns = cur.NumericColumns()
	if sel := sess.Selection(); sel != session.None {
		d.Selection = sel.Label()
	}

	head := cur.Head(defaultPreviewRows)
	d.Preview.Header = head.Names()
	for _, k := range head.Kinds() {
		d.Preview.Kinds = append(d.Preview.Kinds, k.DType())
	}
	for _, rec := range head.Records()[1:] {
		d.Preview.Rows = append(d.Preview.Rows, rec)
	}

	if withSummary {
		d.Summary = summary.Summarize(cur).Text()
	}

	for _, e := range sess.History() {
		d.History = append(d.History, templates.Event{
			Detail:     e.Detail,
			RowsBefore: e.RowsBefore,
			RowsAfter:  e.RowsAfter,
			At:         e.At.Format("15:04:05"),
		})
	}
}
