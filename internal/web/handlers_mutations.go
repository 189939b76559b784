package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/tidycsv/internal/audit"
	"github.com/JonMunkholm/tidycsv/internal/logging"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/table"
)

// multipartMemory is how much of an upload is buffered in memory; the rest
// spills to a temporary file.
const multipartMemory = 32 << 20

// handleUpload loads the posted file into the caller's session, creating the
// session on first use.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.respondError(w, r, uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	sess, err := s.currentSession(w, r, true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := withRequestMetadata(r.Context(), r, sess.ID())
	logger := logging.WithFields(ctx, "file", header.Filename, "bytes", header.Size)
	logger.Debug("upload received")

	// Checked here as well as in Load so a second upload does not wait for
	// a parse slot only to be rejected.
	if sess.State() == session.Loaded {
		s.respondError(w, r.WithContext(ctx), session.ErrAlreadyLoaded)
		return
	}

	if err := s.loads.Acquire(ctx); err != nil {
		s.metrics.ObserveLoad(0, err)
		s.respondError(w, r.WithContext(ctx), err)
		return
	}
	start := time.Now()
	res, err := sess.Load(header.Filename, file)
	s.loads.Release()
	s.metrics.ObserveLoad(time.Since(start), err)
	if err != nil {
		s.respondError(w, r.WithContext(ctx), err)
		return
	}

	logger.Info("file loaded",
		"rows", res.RowsAfter,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.record(ctx, sess.ID(), audit.ActionLoad, header.Filename, res)
	s.respondResult(w, r, res)
}

// uploadError classifies a multipart parsing failure.
func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), strings.Contains(err.Error(), "request body too large"):
		return fmt.Errorf("%w: %v", errFileTooLarge, err)
	case errors.Is(err, http.ErrMissingFile):
		return table.ErrNoFile
	default:
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
}

// handleNewSession drops the caller's session and issues a fresh one. It is
// the way to start over with another file.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.store.Delete(c.Value)
	}
	sess, err := s.newSession(w)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(logging.WithSession(r.Context(), sess.ID())).Info("session started")

	if wantsHTML(r) {
		s.redirectWithFlash(w, r, flash{Kind: "info", Text: "Started a new session. Upload a CSV file to begin."})
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"session_id": sess.ID()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(w, r, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := withRequestMetadata(r.Context(), r, sess.ID())

	start := time.Now()
	res, err := sess.Reset()
	s.metrics.ObserveOperation("reset", time.Since(start), 0, err)
	if err != nil {
		s.respondError(w, r.WithContext(ctx), err)
		return
	}
	s.record(ctx, sess.ID(), audit.ActionReset, "Reset Data to Original", res)
	s.respondResult(w, r, res)
}

func (s *Server) handleMissing(w http.ResponseWriter, r *http.Request) {
	var req missingRequest
	s.apply(w, r, audit.ActionMissing, &req, func() (session.Operation, error) { return req.operation() })
}

func (s *Server) handleDedupe(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, audit.ActionDedupe, nil, func() (session.Operation, error) { return session.DedupeOp{}, nil })
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	var req scaleRequest
	s.apply(w, r, audit.ActionScale, &req, func() (session.Operation, error) { return req.operation() })
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	s.apply(w, r, audit.ActionConvert, &req, func() (session.Operation, error) { return req.operation() })
}

// apply binds req (when not nil), builds the operation and runs it against
// the caller's session.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, action audit.Action, req render.Binder, build func() (session.Operation, error)) {
	sess, err := s.currentSession(w, r, false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := withRequestMetadata(r.Context(), r, sess.ID())
	r = r.WithContext(ctx)

	if req != nil {
		if err := bind(r, req); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	op, err := build()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	res, err := sess.Apply(op)
	s.metrics.ObserveOperation(op.Name(), time.Since(start), res.RowsBefore-res.RowsAfter, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if res.Message != "" {
		logging.FromContext(ctx).Info("operation applied",
			"operation", res.Operation,
			"detail", op.Detail(),
			"rows_before", res.RowsBefore,
			"rows_after", res.RowsAfter,
		)
		s.record(ctx, sess.ID(), action, op.Detail(), res)
	}
	s.respondResult(w, r, res)
}

// record writes an audit entry. Failures are logged and never reach the
// user.
func (s *Server) record(ctx context.Context, sessionID string, action audit.Action, detail string, res session.Result) {
	if s.recorder == nil {
		return
	}
	e := audit.NewEntry(ctx, sessionID, action, detail, res.RowsBefore, res.RowsAfter)
	if err := s.recorder.Record(ctx, e); err != nil {
		logging.FromContext(ctx).Error("audit record failed", "action", action, "error", err)
	}
}

// respondResult redirects browsers back to the page with the result message
// and answers API clients with the Result as JSON.
func (s *Server) respondResult(w http.ResponseWriter, r *http.Request, res session.Result) {
	if wantsHTML(r) {
		if res.Message == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.redirectWithFlash(w, r, flash{Kind: "success", Text: res.Message})
		return
	}
	render.JSON(w, r, res)
}

// wantsHTML reports whether the request is a browser form submission or
// navigation rather than an API call.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
