// Package editor assembles the document shown by the host's embedded web
// view and defines the text channel between that view and the plugin.
package editor

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wehiroi/flchen/pkg/framework/debug"
)

// Default editor size in pixels.
const (
	DefaultWidth  = 460
	DefaultHeight = 600
)

// DefaultPollInterval is how often the page asks for fresh state.
const DefaultPollInterval = 50 * time.Millisecond

// Callback answers one text message from the control surface. It is called
// synchronously on the host's UI thread and must not block.
type Callback func(message string) string

//go:embed assets/style.css
var styleCSS string

//go:embed assets/bundle.js
var bundleJS string

var page = template.Must(template.New("editor").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style type="text/css">{{.Style}}</style>
</head>
<body>
<div id="app"></div>
<script type="text/javascript">window.FLCHEN_POLL_MS = {{.PollMillis}};</script>
<script type="text/javascript">{{.Script}}</script>
</body>
</html>
`))

type pageData struct {
	Title      string
	Style      template.CSS
	Script     template.JS
	PollMillis int64
}

// Options configures an Editor. Zero fields take defaults.
type Options struct {
	Title        string
	Width        int
	Height       int
	PollInterval time.Duration
	Logger       *debug.Logger
}

// Editor is a fixed-size web view with an inline document and a message
// callback.
type Editor struct {
	Width    int
	Height   int
	document string
	callback Callback
	logger   *debug.Logger
}

// New renders the document and binds cb as the message handler.
func New(cb Callback, opts Options) (*Editor, error) {
	if cb == nil {
		return nil, fmt.Errorf("editor: nil callback")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = debug.Default().Named("editor")
	}

	doc, err := Render(opts.Title, opts.PollInterval)
	if err != nil {
		return nil, err
	}

	return &Editor{
		Width:    opts.Width,
		Height:   opts.Height,
		document: doc,
		callback: cb,
		logger:   opts.Logger,
	}, nil
}

// Render produces the complete HTML document with the stylesheet and script
// inlined.
func Render(title string, poll time.Duration) (string, error) {
	var sb strings.Builder
	err := page.Execute(&sb, pageData{
		Title:      title,
		Style:      template.CSS(styleCSS),
		Script:     template.JS(bundleJS),
		PollMillis: poll.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("editor: render document: %w", err)
	}
	return sb.String(), nil
}

// Size returns the requested window size.
func (e *Editor) Size() (width, height int) {
	return e.Width, e.Height
}

// Document returns the rendered HTML document.
func (e *Editor) Document() string {
	return e.document
}

// Invoke delivers a message from the page. A panicking callback yields an
// empty reply.
func (e *Editor) Invoke(message string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("callback panicked on %q: %v", message, r)
			reply = ""
		}
	}()
	return e.callback(message)
}
