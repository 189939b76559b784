package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
)

// Request payloads arrive as JSON or as urlencoded forms. Form lists use the
// implicit index syntax, e.g. columns._=a&columns._=b.

var validate = validator.New(validator.WithRequiredStructEnabled())

type missingRequest struct {
	Strategy string   `json:"strategy" form:"strategy" validate:"required"`
	Subset   []string `json:"subset" form:"subset" validate:"dive,required"`
}

func (m *missingRequest) Bind(*http.Request) error { return check(m) }

// operation parses the strategy. "None" selects no strategy.
func (m *missingRequest) operation() (session.MissingOp, error) {
	if strings.EqualFold(strings.TrimSpace(m.Strategy), "none") {
		return session.MissingOp{Strategy: session.None}, nil
	}
	s, err := transform.ParseStrategy(m.Strategy)
	if err != nil {
		return session.MissingOp{}, err
	}
	return session.MissingOp{Strategy: s, Subset: m.Subset}, nil
}

type scaleRequest struct {
	Columns []string `json:"columns" form:"columns" validate:"dive,required"`
	Method  string   `json:"method" form:"method" validate:"required"`
}

func (sr *scaleRequest) Bind(*http.Request) error { return check(sr) }

func (sr *scaleRequest) operation() (session.ScaleOp, error) {
	m, err := transform.ParseMethod(sr.Method)
	if err != nil {
		return session.ScaleOp{}, err
	}
	return session.ScaleOp{Columns: sr.Columns, Method: m}, nil
}

type convertRequest struct {
	Column string `json:"column" form:"column" validate:"required"`
	Type   string `json:"type" form:"type" validate:"required"`
}

func (c *convertRequest) Bind(*http.Request) error { return check(c) }

func (c *convertRequest) operation() (session.ConvertOp, error) {
	k, err := table.ParseKind(c.Type)
	if err != nil {
		return session.ConvertOp{}, err
	}
	return session.ConvertOp{Column: c.Column, Kind: k}, nil
}

// bind decodes and validates the request body into v.
func bind(r *http.Request, v render.Binder) error {
	if err := render.Bind(r, v); err != nil {
		if errors.Is(err, errInvalidRequest) {
			return err
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(fields, ", "))
}
