// Package session holds per-user cleaning sessions.
//
// A Session moves from Empty to Loaded on its first successful load and then
// stays Loaded. It keeps the uploaded table as original, which is never
// modified, and the table produced by the latest accepted operation as
// current. Operations on one session are serialized by its mutex; sessions
// share nothing.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
)

var (
	// ErrNotLoaded is returned for operations on a session without a table.
	ErrNotLoaded = errors.New("no data loaded")

	// ErrAlreadyLoaded is returned when a second file is loaded into a
	// session. Start a new session to work on another file.
	ErrAlreadyLoaded = errors.New("data already loaded in this session")

	// ErrEmptySelection is returned for a scale request without columns.
	ErrEmptySelection = errors.New("please select at least one column to scale")
)

// State is the lifecycle state of a Session.
type State int

const (
	Empty State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "empty"
}

// Result describes the outcome of an accepted action.
type Result struct {
	Operation         string `json:"operation"`
	RowsBefore        int    `json:"rows_before"`
	RowsAfter         int    `json:"rows_after"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	Message           string `json:"message"`
}

// Event is one accepted action in the session history. History is for
// display only; the only way back is Reset.
type Event struct {
	Operation  string    `json:"operation"`
	Detail     string    `json:"detail"`
	RowsBefore int       `json:"rows_before"`
	RowsAfter  int       `json:"rows_after"`
	At         time.Time `json:"at"`
}

// Session is one user's working state.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time
	lastUsed  atomic.Int64

	mu        sync.Mutex
	state     State
	fileName  string
	original  table.Table
	current   table.Table
	selection transform.Strategy
	history   []Event
}

// New returns an Empty session.
func New(id string) *Session {
	return newSession(id, time.Now)
}

func newSession(id string, now func() time.Time) *Session {
	t := now()
	s := &Session{id: id, createdAt: t, now: now}
	s.lastUsed.Store(t.UnixNano())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()) }

func (s *Session) touch() { s.lastUsed.Store(s.now().UnixNano()) }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FileName returns the name of the loaded file.
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// Current returns the current table, or the zero Table when Empty.
func (s *Session) Current() table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Original returns the table as loaded.
func (s *Session) Original() table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// Selection returns the last chosen missing value strategy, or None.
func (s *Session) Selection() transform.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// History returns the accepted actions in order.
func (s *Session) History() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.history))
	copy(out, s.history)
	return out
}

// Load parses r and seeds both original and current with the result. A
// failed load leaves the session untouched. Loading into a Loaded session
// fails with ErrAlreadyLoaded without reading r.
func (s *Session) Load(name string, r io.Reader) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state == Loaded {
		return Result{}, ErrAlreadyLoaded
	}
	t, err := table.Load(r)
	if err != nil {
		return Result{}, err
	}

	s.state = Loaded
	s.fileName = name
	s.original = t
	s.current = t.Copy()
	s.selection = None
	res := Result{
		Operation: "load",
		RowsAfter: t.NumRows(),
		Message:   fmt.Sprintf("Loaded %s: %d rows, %d columns.", displayName(name), t.NumRows(), t.NumCols()),
	}
	s.record(res, name)
	return res, nil
}

// Reset makes current a copy of original and clears the missing value
// selection.
func (s *Session) Reset() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state != Loaded {
		return Result{}, ErrNotLoaded
	}
	before := s.current.NumRows()
	s.current = s.original.Copy()
	s.selection = None
	res := Result{
		Operation:  "reset",
		RowsBefore: before,
		RowsAfter:  s.current.NumRows(),
		Message:    "Data has been reset to its original state.",
	}
	s.record(res, "Reset Data to Original")
	return res, nil
}

// Apply runs op against current and, on success, replaces current with the
// result. On error current is unchanged.
func (s *Session) Apply(op Operation) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state != Loaded {
		return Result{}, ErrNotLoaded
	}

	cur := s.current
	res := Result{Operation: op.Name(), RowsBefore: cur.NumRows()}

	var (
		next table.Table
		err  error
	)
	switch o := op.(type) {
	case MissingOp:
		if o.Strategy == None {
			s.selection = None
			res.RowsAfter = res.RowsBefore
			return res, nil
		}
		next, err = transform.HandleMissing(cur, o.Strategy, o.Subset...)
		res.Message = missingMessage(o.Strategy)
	case DedupeOp:
		next, res.DuplicatesRemoved, err = transform.Dedupe(cur)
		res.Message = fmt.Sprintf("Found and removed %d duplicate row(s).", res.DuplicatesRemoved)
	case ScaleOp:
		if len(o.Columns) == 0 {
			return Result{}, ErrEmptySelection
		}
		next, err = transform.Scale(cur, o.Columns, o.Method)
		res.Message = fmt.Sprintf("Successfully applied %s to the selected columns.", o.Method.Label())
	case ConvertOp:
		next, err = transform.Convert(cur, o.Column, o.Kind)
		res.Message = fmt.Sprintf("Converted %s to %s.", o.Column, o.Kind)
	default:
		return Result{}, fmt.Errorf("unsupported operation %T", op)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op.Name(), err)
	}

	if o, ok := op.(MissingOp); ok {
		s.selection = o.Strategy
	}
	s.current = next
	res.RowsAfter = next.NumRows()
	s.record(res, op.Detail())
	return res, nil
}

func (s *Session) record(res Result, detail string) {
	s.history = append(s.history, Event{
		Operation:  res.Operation,
		Detail:     detail,
		RowsBefore: res.RowsBefore,
		RowsAfter:  res.RowsAfter,
		At:         s.now(),
	})
}

func displayName(name string) string {
	if name == "" {
		return "file"
	}
	return name
}
