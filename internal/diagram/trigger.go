package diagram

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultDebounceWindow coalesces bursts of text-changed events.
const DefaultDebounceWindow = 300 * time.Millisecond

// Target is the instance surface the controller drives. *Instance
// satisfies it.
type Target interface {
	Update(inline string)
	BindDocument(path, name string)
	Pinned() bool
	SetPinned(pinned bool)
}

// DocEvent identifies a newly opened document.
type DocEvent struct {
	Path string
	Name string
}

// Controller routes environment notifications into update cycles: it
// debounces rapid edits, suppresses triggers while pinned, rebinds on
// document-opened, and catches up exactly once on unpin.
//
// A single goroutine owns all timer state; public methods communicate with
// it through channels, so no mutexes are required.
type Controller struct {
	target Target
	window time.Duration
	log    *slog.Logger

	textCh chan string
	openCh chan DocEvent
	pinCh  chan bool

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewController creates and starts a controller with the given debounce
// window (<=0 selects the default).
func NewController(target Target, window time.Duration, logger *slog.Logger) *Controller {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		target:  target,
		window:  window,
		log:     logger,
		textCh:  make(chan string, 256),
		openCh:  make(chan DocEvent, 16),
		pinCh:   make(chan bool, 16),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.run()
	return c
}

// run is the controller loop. Debounce state is an explicit two-state
// machine: idle, or armed with a pending text and a running deadline timer.
func (c *Controller) run() {
	defer close(c.stopped)

	var timer *time.Timer
	var timerCh <-chan time.Time
	armed := false
	pending := ""

	arm := func() {
		armed = true
		if timer == nil {
			timer = time.NewTimer(c.window)
			timerCh = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timerCh:
			default:
			}
		}
		timer.Reset(c.window)
	}
	disarm := func() {
		armed = false
		pending = ""
		if timer != nil && !timer.Stop() {
			select {
			case <-timerCh:
			default:
			}
		}
	}

	for {
		select {
		case <-c.stopCh:
			disarm()
			c.log.Debug("trigger: stopped")
			return

		case text := <-c.textCh:
			if c.target.Pinned() {
				continue
			}
			pending = text
			arm()

		case <-timerCh:
			if !armed {
				continue
			}
			armed = false
			text := pending
			pending = ""
			c.target.Update(text)

		case ev := <-c.openCh:
			if c.target.Pinned() {
				continue
			}
			// A new binding obsoletes pending edits of the old one.
			disarm()
			c.target.BindDocument(ev.Path, ev.Name)
			c.target.Update("")

		case pinned := <-c.pinCh:
			if pinned == c.target.Pinned() {
				continue
			}
			c.target.SetPinned(pinned)
			if pinned {
				disarm()
				continue
			}
			// Catch up exactly once on the edits suppressed while pinned.
			c.target.Update("")
		}
	}
}

// TextChanged notifies the controller of an edit; text is the document's
// current content.
func (c *Controller) TextChanged(text string) {
	if c.closed.Load() {
		return
	}
	select {
	case c.textCh <- text:
	case <-c.stopped:
	}
}

// DocumentOpened notifies the controller that a different document became
// active.
func (c *Controller) DocumentOpened(path, name string) {
	if c.closed.Load() {
		return
	}
	select {
	case c.openCh <- DocEvent{Path: path, Name: name}:
	case <-c.stopped:
	}
}

// SetPinned changes the pin state.
func (c *Controller) SetPinned(pinned bool) {
	if c.closed.Load() {
		return
	}
	select {
	case c.pinCh <- pinned:
	case <-c.stopped:
	}
}

// Close stops the controller loop; no triggers fire after it returns.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
}
