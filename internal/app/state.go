// Package app provides application session state and event fan-out for
// the UI layer.
package app

import (
	"fmt"
	"sync"

	"locshot/internal/ocr"
	"locshot/internal/store"
	"locshot/internal/verify"
)

// EventType identifies application events the UI can subscribe to.
type EventType int

const (
	EventStoreOpened EventType = iota
	EventStoreSaved
	EventRunStarted
	EventRunProgress
	EventRunFinished
	EventRegionChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the session: the open row store, configured folders, and
// the current run. UI widgets read from it and subscribe to events;
// they never reach into the core directly.
type State struct {
	mu sync.RWMutex

	// Folder configuration, persisted via preferences.
	StorePath   string
	ImageDir    string
	CropDir     string
	TessdataDir string

	rows *store.Store
	run  *verify.Orchestrator

	listeners map[EventType][]EventListener
}

// NewState creates an empty session.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// OpenStore opens the row store at path and makes it the session's
// current workbook.
func (s *State) OpenStore(path string) error {
	rows, err := store.Open(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.rows != nil {
		s.rows.Close()
	}
	s.rows = rows
	s.StorePath = path
	s.mu.Unlock()

	s.Emit(EventStoreOpened, path)
	return nil
}

// Store returns the open row store, or nil.
func (s *State) Store() *store.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Run returns the current orchestrator, or nil when no run is active.
func (s *State) Run() *verify.Orchestrator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run
}

// StartRun builds the OCR engine and orchestrator for the session's
// configuration and starts the run on a background worker. Events are
// fanned out to EventRunProgress listeners in processing order.
func (s *State) StartRun() error {
	s.mu.Lock()
	rows := s.rows
	cfg := verify.Config{ImageDir: s.ImageDir, CropDir: s.CropDir}
	tessdata := s.TessdataDir
	s.mu.Unlock()

	if rows == nil {
		return fmt.Errorf("no row store open")
	}

	engine, err := ocr.NewEngine(tessdata)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	run := verify.New(rows, engine, cfg)

	s.mu.Lock()
	s.run = run
	s.mu.Unlock()

	if err := run.Start(); err != nil {
		engine.Close()
		return err
	}
	s.Emit(EventRunStarted, nil)

	go func() {
		defer engine.Close()
		for ev := range run.Events() {
			s.Emit(EventRunProgress, ev)
		}
		s.mu.Lock()
		s.run = nil
		s.mu.Unlock()
		s.Emit(EventRunFinished, nil)
	}()
	return nil
}

// SetRegion persists a freshly calibrated rectangle for an item on one
// locale sheet and propagates it to every other locale sheet sharing
// the item.
func (s *State) SetRegion(localeCode, itemID string, item store.Item) error {
	s.mu.RLock()
	rows := s.rows
	s.mu.RUnlock()
	if rows == nil {
		return fmt.Errorf("no row store open")
	}

	if err := rows.SetRegion(localeCode, item.Row, item.Region); err != nil {
		return err
	}
	if err := rows.PropagateRegion(itemID, item.Region); err != nil {
		return err
	}
	if err := rows.Save(); err != nil {
		return err
	}
	s.Emit(EventRegionChanged, itemID)
	s.Emit(EventStoreSaved, nil)
	return nil
}
