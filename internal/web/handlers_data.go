package web

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/tidycsv/internal/audit"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/summary"
	"github.com/JonMunkholm/tidycsv/internal/table"
)

const (
	defaultPreviewRows = 5
	maxPreviewRows     = 1000
)

// loadedSession returns the caller's session if it holds a table.
func (s *Server) loadedSession(w http.ResponseWriter, r *http.Request) (*session.Session, table.Table, error) {
	sess, err := s.currentSession(w, r, false)
	if err != nil {
		return nil, table.Table{}, err
	}
	if sess.State() != session.Loaded {
		return nil, table.Table{}, session.ErrNotLoaded
	}
	return sess, sess.Current(), nil
}

// PreviewColumn describes one column of a preview.
type PreviewColumn struct {
	Name  string     `json:"name"`
	Kind  table.Kind `json:"kind"`
	DType string     `json:"dtype"`
}

// PreviewResponse is the head of the current table.
type PreviewResponse struct {
	FileName  string          `json:"file_name"`
	TotalRows int             `json:"total_rows"`
	Columns   []PreviewColumn `json:"columns"`
	Rows      [][]any         `json:"rows"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, cur, err := s.loadedSession(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	n := parseIntParam(r, "n", defaultPreviewRows)
	if n > maxPreviewRows {
		n = maxPreviewRows
	}
	render.JSON(w, r, previewOf(sess.FileName(), cur, n))
}

func previewOf(name string, t table.Table, n int) PreviewResponse {
	head := t.Head(n)
	resp := PreviewResponse{
		FileName:  name,
		TotalRows: t.NumRows(),
		Columns:   make([]PreviewColumn, 0, t.NumCols()),
		Rows:      make([][]any, head.NumRows()),
	}
	for _, c := range head.Columns() {
		resp.Columns = append(resp.Columns, PreviewColumn{Name: c.Name, Kind: c.Kind, DType: c.Kind.DType()})
	}
	for i := range resp.Rows {
		row := head.Row(i)
		for j, v := range row {
			// JSON has no infinities.
			if f, ok := v.(float64); ok && math.IsInf(f, 0) {
				row[j] = table.FormatValue(f)
			}
		}
		resp.Rows[i] = row
	}
	return resp
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, cur, err := s.loadedSession(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sum := summary.Summarize(cur)

	switch r.URL.Query().Get("format") {
	case "", "json":
		render.JSON(w, r, sum)
	case "text":
		render.PlainText(w, r, sum.Text())
	default:
		s.respondError(w, r, fmt.Errorf("%w: unknown summary format %q", errInvalidRequest, r.URL.Query().Get("format")))
	}
}

// handleDownload streams the current table as processed_data.csv or, with
// format=xlsx, as processed_data.xlsx.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, cur, err := s.loadedSession(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := withRequestMetadata(r.Context(), r, sess.ID())

	format := r.URL.Query().Get("format")
	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "", "csv":
		format = "csv"
		contentType = "text/csv; charset=utf-8"
		err = cur.WriteCSV(&buf)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = cur.WriteXLSX(&buf)
	default:
		err = fmt.Errorf("%w: unknown download format %q", errInvalidRequest, format)
	}
	if err != nil {
		s.respondError(w, r.WithContext(ctx), err)
		return
	}

	name := "processed_data." + format
	s.record(ctx, sess.ID(), audit.ActionExport, name, session.Result{RowsBefore: cur.NumRows(), RowsAfter: cur.NumRows()})

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(w, r, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, sess.History())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":          "ok",
		"sessions":        s.store.Len(),
		"loads_active":    s.loads.Active(),
		"loads_available": s.loads.Available(),
		"time":            time.Now().UTC().Format(time.RFC3339),
	})
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
