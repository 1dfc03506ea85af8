package verify

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"locshot/internal/enhance"
	"locshot/internal/region"
	"locshot/internal/screenshot"
	"locshot/internal/store"
)

// State is the orchestrator run state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Recognizer is the OCR engine boundary: image plus locale code in,
// recognized text out. *ocr.Engine satisfies it.
type Recognizer interface {
	Recognize(img image.Image, localeCode string) (string, error)
}

// RowStore is the subset of the spreadsheet store a run needs.
// *store.Store satisfies it.
type RowStore interface {
	Locales() ([]store.LocaleRow, error)
	Items(localeCode string) ([]store.Item, error)
	SetResult(localeCode string, row int, recognized string, v store.Verdict) error
	Save() error
}

// Config holds the per-run folder paths.
type Config struct {
	ImageDir string
	CropDir  string // when set, cropped regions are written for inspection
}

// EventKind classifies progress events.
type EventKind int

const (
	EventState  EventKind = iota // run state changed
	EventItem                    // one item finished (any verdict)
	EventLocale                  // one locale finished, Summary set
	EventLog                     // informational message
	EventDone                    // run finished, Summary is the run total
)

// Event is one entry of the ordered progress stream.
type Event struct {
	Kind    EventKind
	Time    time.Time
	State   State
	Locale  string
	Item    string
	Verdict store.Verdict
	Message string
	Done    int // items finished so far
	Total   int // items in the run
	Summary *Summary
}

// Orchestrator runs the verification loop on a single background
// worker. Pause and stop take effect between items only; an in-flight
// item always completes and persists.
type Orchestrator struct {
	rows   RowStore
	engine Recognizer
	cfg    Config

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	pausing bool
	stopped bool

	// The worker never sends on events directly. emit appends to an
	// unbounded queue and a forwarder goroutine feeds the channel, so
	// a run without a concurrent consumer still finishes no matter how
	// many events it produces.
	events chan Event
	qmu    sync.Mutex
	qcond  *sync.Cond
	queue  []Event
	qdone  bool
}

// New creates an orchestrator. The events channel carries progress in
// processing order and is closed when the run ends.
func New(rows RowStore, engine Recognizer, cfg Config) *Orchestrator {
	o := &Orchestrator{
		rows:   rows,
		engine: engine,
		cfg:    cfg,
		state:  StateIdle,
		events: make(chan Event, 64),
	}
	o.cond = sync.NewCond(&o.mu)
	o.qcond = sync.NewCond(&o.qmu)
	return o
}

// Events returns the ordered progress stream.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start launches the run on a background goroutine.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return fmt.Errorf("run already started (state %s)", o.state)
	}
	o.state = StateRunning
	o.mu.Unlock()

	go o.run()
	return nil
}

// Run executes the run synchronously and returns its summary. The
// progress stream stays available on Events() afterwards. Either
// Start or Run is used, not both.
func (o *Orchestrator) Run() (*Summary, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, fmt.Errorf("run already started (state %s)", o.state)
	}
	o.state = StateRunning
	o.mu.Unlock()

	return o.run()
}

// Pause requests suspension before the next item.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.pausing = true
	o.mu.Unlock()
}

// Resume continues a paused run.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.pausing = false
	o.mu.Unlock()
	o.cond.Broadcast()
}

// Stop requests cancellation. The current item completes, results
// computed so far are flushed, remaining items stay untouched.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.pausing = false
	o.mu.Unlock()
	o.cond.Broadcast()
}

func (o *Orchestrator) run() (*Summary, error) {
	go o.forward()
	defer o.finishEvents()

	// Scan phase. A store that cannot be read aborts the run; there
	// is nothing to process.
	locales, err := o.rows.Locales()
	if err != nil {
		return o.fail(fmt.Errorf("scan failed: %w", err))
	}
	perLocale := make(map[string][]store.Item, len(locales))
	total := 0
	for _, loc := range locales {
		items, err := o.rows.Items(loc.Code)
		if err != nil {
			return o.fail(fmt.Errorf("scan failed: %w", err))
		}
		perLocale[loc.Code] = items
		total += len(items)
	}

	o.emit(Event{Kind: EventState, State: StateRunning,
		Message: fmt.Sprintf("run started: %d locales, %d items", len(locales), total)})

	summary := &Summary{}
	done := 0

	for _, loc := range locales {
		if o.checkStopped() {
			break
		}

		locSum := LocaleSummary{Locale: loc.Code, Run: loc.Run}
		items := perLocale[loc.Code]

		for _, item := range items {
			if !o.waitIfPaused() {
				break // stop observed while paused
			}

			var verdict store.Verdict
			var recognized string
			if !loc.Run {
				// Locale-level skip: no OCR, recognized text stays
				// empty.
				verdict = store.VerdictSkipped
			} else {
				recognized, verdict = o.processItem(loc.Code, item)
			}

			if err := o.rows.SetResult(loc.Code, item.Row, recognized, verdict); err != nil {
				o.emit(Event{Kind: EventLog, Locale: loc.Code, Item: item.ID,
					Message: fmt.Sprintf("failed to record result: %v", err)})
			}
			locSum.count(verdict)
			done++
			o.emit(Event{Kind: EventItem, Locale: loc.Code, Item: item.ID,
				Verdict: verdict, Done: done, Total: total})
		}

		summary.add(locSum)
		o.emit(Event{Kind: EventLocale, Locale: loc.Code, Done: done, Total: total,
			Summary: &Summary{Locales: []LocaleSummary{locSum}},
			Message: locSum.String()})

		if o.checkStopped() {
			break
		}
	}

	// Flush everything computed so far, also on stop.
	if err := o.rows.Save(); err != nil {
		o.emit(Event{Kind: EventLog, Message: fmt.Sprintf("save failed, results kept in memory: %v", err)})
	}

	final := StateCompleted
	if o.checkStopped() {
		final = StateStopped
	}
	o.setState(final)
	o.emit(Event{Kind: EventState, State: final, Message: "run " + final.String()})
	o.emit(Event{Kind: EventDone, State: final, Done: done, Total: total, Summary: summary})
	return summary, nil
}

// processItem runs the pipeline for one item of a RUN locale. Every
// failure is converted to a verdict here; nothing propagates past the
// item boundary.
func (o *Orchestrator) processItem(localeCode string, item store.Item) (string, store.Verdict) {
	if !item.Run {
		return "", store.VerdictSkipped
	}
	if item.Region.IsEmpty() {
		return "", store.VerdictInvalidCoords
	}

	img, err := screenshot.Load(o.cfg.ImageDir, item.ImageName, item.ID, localeCode)
	if err != nil {
		var fileErr *screenshot.FileError
		if errors.As(err, &fileErr) && fileErr.Missing {
			o.logItem(localeCode, item.ID, err)
			return "", store.VerdictImageNotFound
		}
		o.logItem(localeCode, item.ID, err)
		return "", store.VerdictImageReadError
	}

	crop, err := region.Extract(img, item.Region)
	if err != nil {
		o.logItem(localeCode, item.ID, err)
		return "", store.VerdictInvalidCoords
	}

	enhanced, err := enhance.Enhance(crop)
	if err != nil {
		o.logItem(localeCode, item.ID, err)
		return "", store.VerdictImageReadError
	}

	if o.cfg.CropDir != "" {
		if err := screenshot.SaveCrop(enhanced, o.cfg.CropDir, item.ID, localeCode); err != nil {
			o.logItem(localeCode, item.ID, err)
		}
	}

	recognized, err := o.engine.Recognize(enhanced, localeCode)
	if err != nil {
		o.logItem(localeCode, item.ID, err)
		return "", store.VerdictOCRError
	}
	recognized = strings.TrimSpace(recognized)

	if Equal(item.ExpectedText, recognized) {
		return recognized, store.VerdictCorrect
	}
	return recognized, store.VerdictIncorrect
}

// waitIfPaused blocks between items while paused. Returns false if a
// stop was observed.
func (o *Orchestrator) waitIfPaused() bool {
	o.mu.Lock()
	if !o.pausing && !o.stopped {
		o.mu.Unlock()
		return true
	}
	if o.stopped {
		o.mu.Unlock()
		return false
	}

	o.state = StatePaused
	o.mu.Unlock()
	o.emit(Event{Kind: EventState, State: StatePaused, Message: "run paused"})

	o.mu.Lock()
	for o.pausing && !o.stopped {
		o.cond.Wait()
	}
	stopped := o.stopped
	if !stopped {
		o.state = StateRunning
	}
	o.mu.Unlock()

	if !stopped {
		o.emit(Event{Kind: EventState, State: StateRunning, Message: "run resumed"})
	}
	return !stopped
}

func (o *Orchestrator) checkStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) fail(err error) (*Summary, error) {
	o.setState(StateFailed)
	o.emit(Event{Kind: EventState, State: StateFailed, Message: err.Error()})
	return nil, err
}

func (o *Orchestrator) logItem(localeCode, itemID string, err error) {
	o.emit(Event{Kind: EventLog, Locale: localeCode, Item: itemID, Message: err.Error()})
}

func (o *Orchestrator) emit(ev Event) {
	ev.Time = time.Now()
	o.qmu.Lock()
	o.queue = append(o.queue, ev)
	o.qmu.Unlock()
	o.qcond.Signal()
}

func (o *Orchestrator) finishEvents() {
	o.qmu.Lock()
	o.qdone = true
	o.qmu.Unlock()
	o.qcond.Signal()
}

// forward drains the event queue onto the events channel in emit
// order and closes the channel once the run is done and the queue is
// empty.
func (o *Orchestrator) forward() {
	for {
		o.qmu.Lock()
		for len(o.queue) == 0 && !o.qdone {
			o.qcond.Wait()
		}
		if len(o.queue) == 0 {
			o.qmu.Unlock()
			close(o.events)
			return
		}
		ev := o.queue[0]
		o.queue = o.queue[1:]
		o.qmu.Unlock()
		o.events <- ev
	}
}
