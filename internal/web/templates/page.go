// Package templates renders the tidycsv page as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash is a one-shot status message.
type Flash struct {
	Kind string // success, info or error
	Text string
	Code string
}

// Preview is the head of the current table.
type Preview struct {
	Header []string
	Kinds  []string
	Rows   [][]string
}

// Event is one line of the operation history.
type Event struct {
	Detail     string
	RowsBefore int
	RowsAfter  int
	At         string
}

// PageData is everything the page shows.
type PageData struct {
	Loaded         bool
	FileName       string
	Rows           int
	Columns        []string
	NumericColumns []string
	Selection      string // label of the chosen missing value strategy
	Strategies     []string
	Methods        []string
	Kinds          []string
	Preview        Preview
	Summary        string // rendered summary, empty unless requested
	History        []Event
	Flash          *Flash
}

// Page renders the full document.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>tidycsv</title><style>` + style + `</style></head><body>`)
		p.raw(`<h1>Data Preprocessing</h1>`)

		if d.Flash != nil {
			if err := FlashAlert(*d.Flash).Render(ctx, p.w); err != nil {
				return err
			}
		}

		p.raw(`<div class="layout"><aside>`)
		uploadSection(p, d)
		if d.Loaded {
			controls(p, d)
		}
		p.raw(`</aside><main>`)
		if d.Loaded {
			mainPanel(p, d)
		} else {
			p.raw(`<p class="info">Awaiting CSV file upload. Please upload a file in the sidebar.</p>`)
		}
		p.raw(`</main></div></body></html>`)
		return p.err
	})
}

// FlashAlert renders a status message box.
func FlashAlert(f Flash) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		kind := f.Kind
		if kind == "" {
			kind = "info"
		}
		p.raw(`<div class="flash ` + kind + `" role="status">`)
		p.text(f.Text)
		if f.Code != "" {
			p.raw(` <small>(`)
			p.text(f.Code)
			p.raw(`)</small>`)
		}
		p.raw(`</div>`)
		return p.err
	})
}

func uploadSection(p *printer, d PageData) {
	p.raw(`<section><h2>1. Upload Data</h2>`)
	if d.Loaded {
		p.raw(`<p>Loaded <strong>`)
		p.text(d.FileName)
		p.raw(`</strong></p>`)
		p.raw(`<form method="post" action="/api/session/new"><button>Start new session</button></form>`)
	} else {
		p.raw(`<form method="post" action="/api/upload" enctype="multipart/form-data">`)
		p.raw(`<label>Upload your CSV file <input type="file" name="file" accept=".csv,text/csv" required></label>`)
		p.raw(`<button>Upload</button></form>`)
	}
	p.raw(`</section>`)
}

func controls(p *printer, d PageData) {
	p.raw(`<section><h2>2. Preprocessing Options</h2>`)
	p.raw(`<form method="post" action="/api/reset"><button>Reset Data to Original</button></form>`)
	p.raw(`<form method="get" action="/"><input type="hidden" name="summary" value="1"><button>Show Data Summary</button></form>`)

	p.raw(`<h3>Handle Missing Values</h3><form method="post" action="/api/missing">`)
	p.raw(`<label>Choose a method: <select name="strategy">`)
	for _, s := range append([]string{"None"}, d.Strategies...) {
		option(p, s, s == d.Selection || (d.Selection == "" && s == "None"))
	}
	p.raw(`</select></label><button>Apply</button></form>`)

	p.raw(`<form method="post" action="/api/dedupe"><button>Remove Duplicates</button></form>`)

	p.raw(`<h3>Scale Numerical Features</h3>`)
	if len(d.NumericColumns) == 0 {
		p.raw(`<p class="warning">No numerical columns available to scale.</p>`)
	} else {
		p.raw(`<form method="post" action="/api/scale"><fieldset><legend>Select columns to scale:</legend>`)
		for _, c := range d.NumericColumns {
			p.raw(`<label><input type="checkbox" name="columns._" value="`)
			p.text(c)
			p.raw(`"> `)
			p.text(c)
			p.raw(`</label>`)
		}
		p.raw(`</fieldset><label>Choose a scaling method: <select name="method">`)
		for i, m := range d.Methods {
			option(p, m, i == 0)
		}
		p.raw(`</select></label><button>Apply Scaling</button></form>`)
	}

	p.raw(`<h3>Convert Column Type</h3><form method="post" action="/api/convert">`)
	p.raw(`<select name="column">`)
	for _, c := range d.Columns {
		option(p, c, false)
	}
	p.raw(`</select><select name="type">`)
	for _, k := range d.Kinds {
		option(p, k, false)
	}
	p.raw(`</select><button>Convert</button></form>`)

	p.raw(`<h2>3. Download Processed Data</h2>`)
	p.raw(`<p><a class="button" href="/api/download?format=csv">Download data as CSV</a> `)
	p.raw(`<a class="button" href="/api/download?format=xlsx">Download as Excel</a></p>`)
	p.raw(`</section>`)
}

func mainPanel(p *printer, d PageData) {
	p.raw(`<h2>Current Data Preview</h2>`)
	p.printf(`<p>%d rows, %d columns</p>`, d.Rows, len(d.Columns))
	p.raw(`<table><thead><tr>`)
	for i, h := range d.Preview.Header {
		p.raw(`<th>`)
		p.text(h)
		if i < len(d.Preview.Kinds) {
			p.raw(`<br><small>`)
			p.text(d.Preview.Kinds[i])
			p.raw(`</small>`)
		}
		p.raw(`</th>`)
	}
	p.raw(`</tr></thead><tbody>`)
	for _, row := range d.Preview.Rows {
		p.raw(`<tr>`)
		for _, cell := range row {
			p.raw(`<td>`)
			p.text(cell)
			p.raw(`</td>`)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)

	if d.Summary != "" {
		p.raw(`<h2>Data Summary</h2><pre>`)
		p.text(d.Summary)
		p.raw(`</pre>`)
	}

	if len(d.History) > 0 {
		p.raw(`<h2>History</h2><ol class="history">`)
		for _, e := range d.History {
			p.raw(`<li>`)
			p.text(e.Detail)
			p.printf(` <small>%d &rarr; %d rows, `, e.RowsBefore, e.RowsAfter)
			p.text(e.At)
			p.raw(`</small></li>`)
		}
		p.raw(`</ol>`)
	}
}

func option(p *printer, v string, selected bool) {
	p.raw(`<option value="`)
	p.text(v)
	if selected {
		p.raw(`" selected>`)
	} else {
		p.raw(`">`)
	}
	p.text(v)
	p.raw(`</option>`)
}

// printer writes until the first error and remembers it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) printf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

var style = strings.Join([]string{
	`body{font-family:system-ui,sans-serif;margin:1.5rem;color:#1f2933}`,
	`.layout{display:flex;gap:2rem}aside{min-width:18rem;max-width:22rem}main{flex:1;overflow-x:auto}`,
	`form{margin:.5rem 0}table{border-collapse:collapse}th,td{border:1px solid #cbd2d9;padding:.25rem .5rem;text-align:left}`,
	`.flash{padding:.5rem 1rem;border-radius:4px;margin-bottom:1rem}.success{background:#e3f9e5}.error{background:#ffe3e3}.info{background:#e6f6ff}`,
	`.warning{color:#8d2b0b}fieldset{border:none;padding:0}fieldset label{display:block}pre{background:#f5f7fa;padding:1rem}`,
}, "")
