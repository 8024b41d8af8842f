package diagram

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/render"
)

// DefaultStylingDelay is how long after a render the styling pass waits for
// the renderer to settle.
const DefaultStylingDelay = 100 * time.Millisecond

// Renderer is the drawing engine the orchestrator pushes parsed trees into.
// *render.Scene satisfies it.
type Renderer interface {
	SetData(root *outline.Node, opts render.Options)
	SetColor(fn render.ColorFunc)
	Fit()
	Data() *outline.Node
	SetTitle(title string)
	AddStyleRule(rule string)
	ApplyStrokeWidths(widths [4]float64)
	RearmToggles(fn func())
}

// DocReader reads document text from the host environment.
type DocReader interface {
	Read(path string) ([]byte, error)
}

// AssetLoader loads declared external assets into the environment.
// Duplicate loads must be safe no-ops.
type AssetLoader interface {
	EnsureLoaded(assets []outline.Asset) error
}

// FlagStore persists per-document view flags.
type FlagStore interface {
	Get(path string) (ViewFlags, bool, error)
	Put(path string, f ViewFlags) error
}

// InstanceConfig wires an Instance's collaborators. Renderer and Parser are
// required; the rest are optional.
type InstanceConfig struct {
	Renderer Renderer
	Parser   Parser
	Links    LinkResolver
	Assets   AssetLoader
	Docs     DocReader
	Flags    FlagStore
	Views    *Registry
	Prefs    Preferences
	Logger   *slog.Logger

	// OnRender is notified with the bound document path after every
	// successful update cycle. It runs inside the cycle and must not call
	// back into the instance.
	OnRender func(doc string)
	// Screenshot exports the current scene with the given frontmatter
	// screenshot colors.
	Screenshot func(textColor, background string) error

	StylingDelay time.Duration
}

// Instance binds one document to one rendered diagram and owns the update
// orchestration between them. Exactly one node tree and one options object
// are current at any time; the renderer always reflects the most recently
// completed cycle.
type Instance struct {
	mu sync.Mutex

	log      *slog.Logger
	renderer Renderer
	xform    *Transform
	assets   AssetLoader
	docs     DocReader
	flags    FlagStore
	views    *Registry
	prefs    Preferences

	onRender func(doc string)
	shot     func(textColor, background string) error
	delay    time.Duration

	docPath   string
	docName   string
	pinned    bool
	hasFitted bool
	toolbar   bool
	companion string

	// gen numbers update cycles. Cycles themselves are serialized by mu,
	// so the counter's job is letting the deferred styling pass detect
	// that a newer cycle superseded the one that scheduled it.
	gen uint64

	lastOpts             render.Options
	screenshotText       string
	screenshotBackground string
}

// NewInstance creates a diagram instance from cfg.
func NewInstance(cfg InstanceConfig) *Instance {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.StylingDelay
	if delay <= 0 {
		delay = DefaultStylingDelay
	}
	return &Instance{
		log:      logger,
		renderer: cfg.Renderer,
		xform:    &Transform{Parser: cfg.Parser, Links: cfg.Links},
		assets:   cfg.Assets,
		docs:     cfg.Docs,
		flags:    cfg.Flags,
		views:    cfg.Views,
		prefs:    cfg.Prefs,
		onRender: cfg.OnRender,
		shot:     cfg.Screenshot,
		delay:    delay,
		toolbar:  true,
	}
}

// Update runs one full update cycle. When inline text is supplied it is
// rendered directly; otherwise the bound document is read from the
// environment. A cycle with no source text at all ends silently. Any other
// failure is logged and leaves the previously displayed state untouched.
func (in *Instance) Update(inline string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.gen++
	if err := in.runCycle(in.gen, inline); err != nil {
		if errors.Is(err, apperr.ErrNoDocument) {
			return
		}
		in.log.Error("diagram: update failed",
			slog.String("doc", in.docPath),
			slog.String("error", err.Error()))
	}
}

// runCycle executes the orchestration steps in order; each step is a hard
// dependency on the previous one succeeding. Caller must hold in.mu.
func (in *Instance) runCycle(gen uint64, inline string) error {
	// Code-block background rules; re-adding them each cycle is idempotent.
	for _, rule := range in.codeBlockRules() {
		in.renderer.AddStyleRule(rule)
	}

	text := inline
	if text == "" {
		if in.docPath == "" {
			return apperr.ErrNoDocument
		}
		data, err := in.docs.Read(in.docPath)
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrRead, err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return apperr.ErrNoDocument
	}

	res, err := in.xform.Run(text)
	if err != nil {
		return err
	}

	fm := ParseFrontmatter(res.Frontmatter)
	opts := Resolve(in.prefs, fm)
	in.screenshotText = fm.ScreenshotTextColor
	in.screenshotBackground = fm.ScreenshotBackground

	if in.assets != nil {
		if err := in.assets.EnsureLoaded(res.Assets); err != nil {
			return fmt.Errorf("load assets: %w", err)
		}
	}

	in.renderer.SetColor(ColorFor(in.prefs, fm.Color))
	in.renderer.SetData(res.Root, opts)
	in.lastOpts = opts

	if !in.hasFitted {
		in.renderer.Fit()
		in.hasFitted = true
	}

	title := "Mind map"
	if in.docName != "" {
		title = "Mind map of " + in.docName
	}
	in.renderer.SetTitle(title)

	in.scheduleStyling(gen)

	if in.onRender != nil {
		in.onRender(in.docPath)
	}
	return nil
}

// codeBlockRules are the two stylesheet rules re-applied every cycle.
func (in *Instance) codeBlockRules() [2]string {
	bg := in.prefs.CodeBlockBackground
	if bg == "" {
		bg = "#f6f8fa"
	}
	return [2]string{
		fmt.Sprintf(".markmap-code { background-color: %s; }", bg),
		fmt.Sprintf(".markmap-code code { background-color: %s; }", bg),
	}
}

// scheduleStyling arms one styling pass after the settle delay.
func (in *Instance) scheduleStyling(gen uint64) {
	time.AfterFunc(in.delay, func() { in.runStyling(gen) })
}

// runStyling applies the styling pass unless the scheduling cycle has been
// superseded.
func (in *Instance) runStyling(gen uint64) {
	in.mu.Lock()
	stale := gen != in.gen
	widths := in.prefs.StrokeWidths
	in.mu.Unlock()
	if stale {
		return
	}
	ApplyStyling(in.renderer, widths, func() {
		in.scheduleStyling(in.currentGen())
	})
}

func (in *Instance) currentGen() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.gen
}

// BindDocument rebinds the instance to a new source document. The fit flag
// resets so the first render of the new binding centers the view, and
// persisted flags for the document are restored.
func (in *Instance) BindDocument(path, name string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.docPath = path
	in.docName = name
	in.hasFitted = false

	if in.flags != nil && path != "" {
		if f, ok, err := in.flags.Get(path); err != nil {
			in.log.Warn("diagram: load view flags failed",
				slog.String("doc", path), slog.String("error", err.Error()))
		} else if ok {
			in.pinned = f.Pinned
			in.toolbar = f.Toolbar
		}
	}
}

// Document returns the currently bound document path and name.
func (in *Instance) Document() (path, name string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.docPath, in.docName
}

// Pinned reports whether automatic updates are suspended.
func (in *Instance) Pinned() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pinned
}

// SetPinned records the pinned flag and persists it.
func (in *Instance) SetPinned(pinned bool) {
	in.mu.Lock()
	in.pinned = pinned
	in.persistFlags()
	in.mu.Unlock()
}

// ToolbarVisible reports the toolbar flag.
func (in *Instance) ToolbarVisible() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.toolbar
}

// ToggleToolbar flips the toolbar flag and returns the new value.
func (in *Instance) ToggleToolbar() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.toolbar = !in.toolbar
	in.persistFlags()
	return in.toolbar
}

// persistFlags writes the current flags for the bound document.
// Caller must hold in.mu.
func (in *Instance) persistFlags() {
	if in.flags == nil || in.docPath == "" {
		return
	}
	f := ViewFlags{Pinned: in.pinned, Toolbar: in.toolbar}
	if err := in.flags.Put(in.docPath, f); err != nil {
		in.log.Warn("diagram: persist view flags failed",
			slog.String("doc", in.docPath), slog.String("error", err.Error()))
	}
}

// CollapseAll re-issues the displayed tree with the expand level forced to
// zero, collapsing everything below the root.
func (in *Instance) CollapseAll() {
	in.mu.Lock()
	defer in.mu.Unlock()

	data := in.renderer.Data()
	if data == nil {
		return
	}
	opts := in.lastOpts.Clone()
	opts["initialExpandLevel"] = 0
	in.renderer.SetData(data, opts)
	in.lastOpts = opts
	in.scheduleStyling(in.gen)
}

// Screenshot exports the current diagram using the screenshot colors the
// document's frontmatter declared, if any. Failures are logged here, at the
// export boundary, and never affect the displayed diagram.
func (in *Instance) Screenshot() error {
	in.mu.Lock()
	shot := in.shot
	text, bg := in.screenshotText, in.screenshotBackground
	in.mu.Unlock()

	if shot == nil {
		return fmt.Errorf("%w: no export collaborator", apperr.ErrExport)
	}
	if err := shot(text, bg); err != nil {
		in.log.Error("diagram: screenshot failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", apperr.ErrExport, err)
	}
	return nil
}

// setCompanion records the linked companion view id. Empty clears the link.
func (in *Instance) setCompanion(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.companion = id
}

// Companion returns the linked companion view, validated live against the
// view registry: a companion that has since closed reports as absent.
func (in *Instance) Companion() (ViewInfo, bool) {
	in.mu.Lock()
	id := in.companion
	reg := in.views
	in.mu.Unlock()

	if id == "" || reg == nil {
		return ViewInfo{}, false
	}
	return reg.Get(id)
}
