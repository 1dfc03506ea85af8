package verify

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"locshot/internal/screenshot"
	"locshot/internal/store"
	"locshot/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory RowStore.
type fakeStore struct {
	locales  []store.LocaleRow
	items    map[string][]store.Item
	saves    int
	failScan bool
}

func (f *fakeStore) Locales() ([]store.LocaleRow, error) {
	if f.failScan {
		return nil, &store.Error{Op: "open", Err: errors.New("file locked")}
	}
	return f.locales, nil
}

func (f *fakeStore) Items(localeCode string) ([]store.Item, error) {
	if f.failScan {
		return nil, &store.Error{Op: "read", Err: errors.New("file locked")}
	}
	return f.items[localeCode], nil
}

func (f *fakeStore) SetResult(localeCode string, row int, recognized string, v store.Verdict) error {
	items := f.items[localeCode]
	for i := range items {
		if items[i].Row == row {
			items[i].RecognizedText = recognized
			items[i].Verdict = v
			return nil
		}
	}
	return fmt.Errorf("no row %d in %s", row, localeCode)
}

func (f *fakeStore) Save() error {
	f.saves++
	return nil
}

// fakeEngine returns scripted text keyed by locale/item position.
type fakeEngine struct {
	text   string
	err    error
	calls  int
	onCall func(n int)
}

func (f *fakeEngine) Recognize(_ image.Image, _ string) (string, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// writeScreenshot writes a white 200x100 PNG for an item.
func writeScreenshot(t *testing.T, dir, itemID, localeCode string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(filepath.Join(dir, screenshot.ImageName(itemID, localeCode)))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func calibrated() geometry.RectInt {
	return geometry.RectInt{X: 10, Y: 10, Width: 120, Height: 40}
}

func drain(o *Orchestrator) []Event {
	var events []Event
	for ev := range o.Events() {
		events = append(events, ev)
	}
	return events
}

func TestRunCorrectVerdict(t *testing.T) {
	dir := t.TempDir()
	writeScreenshot(t, dir, "W001", "en")

	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items: map[string][]store.Item{
			"en": {{Row: 2, Run: true, ID: "W001", Region: calibrated(), ExpectedText: "STOP"}},
		},
	}
	engine := &fakeEngine{text: "STOP"}
	o := New(rows, engine, Config{ImageDir: dir})

	summary, err := o.Run()
	require.NoError(t, err)
	drain(o)

	item := rows.items["en"][0]
	assert.Equal(t, store.VerdictCorrect, item.Verdict)
	assert.Equal(t, "STOP", item.RecognizedText)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, StateCompleted, o.State())
	assert.Equal(t, 1, summary.Totals().Correct)
	assert.GreaterOrEqual(t, rows.saves, 1)
}

func TestRunIncorrectVerdict(t *testing.T) {
	dir := t.TempDir()
	writeScreenshot(t, dir, "W001", "en")

	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items: map[string][]store.Item{
			"en": {{Row: 2, Run: true, ID: "W001", Region: calibrated(), ExpectedText: "STOP"}},
		},
	}
	o := New(rows, &fakeEngine{text: "5T0P"}, Config{ImageDir: dir})

	_, err := o.Run()
	require.NoError(t, err)
	drain(o)

	item := rows.items["en"][0]
	assert.Equal(t, store.VerdictIncorrect, item.Verdict)
	assert.Equal(t, "5T0P", item.RecognizedText)
}

func TestRunSkipsLocaleWithoutOCR(t *testing.T) {
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "th", Run: false}},
		items: map[string][]store.Item{
			"th": {
				{Row: 2, Run: true, ID: "W001", Region: calibrated(), ExpectedText: "หยุด"},
				{Row: 3, Run: true, ID: "W002", Region: calibrated(), ExpectedText: "เมนู"},
			},
		},
	}
	engine := &fakeEngine{text: "anything"}
	o := New(rows, engine, Config{ImageDir: t.TempDir()})

	_, err := o.Run()
	require.NoError(t, err)
	drain(o)

	for _, item := range rows.items["th"] {
		assert.Equal(t, store.VerdictSkipped, item.Verdict)
		assert.Empty(t, item.RecognizedText)
	}
	assert.Zero(t, engine.calls, "skipped locale must not invoke OCR")
}

func TestRunPerItemFailuresDoNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeScreenshot(t, dir, "W004", "de")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "W003_de.png"), []byte("junk"), 0o644))

	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "de", Run: true}},
		items: map[string][]store.Item{
			"de": {
				{Row: 2, Run: false, ID: "W001", Region: calibrated(), ExpectedText: "a"},
				{Row: 3, Run: true, ID: "W002", ExpectedText: "b"}, // no region
				{Row: 4, Run: true, ID: "W003", Region: calibrated(), ExpectedText: "c"}, // corrupt file
				{Row: 5, Run: true, ID: "W004", Region: calibrated(), ExpectedText: "d"}, // engine error
				{Row: 6, Run: true, ID: "W005", Region: calibrated(), ExpectedText: "e"}, // missing file
			},
		},
	}
	o := New(rows, &fakeEngine{err: errors.New("tesseract crashed")}, Config{ImageDir: dir})

	_, err := o.Run()
	require.NoError(t, err)
	drain(o)

	items := rows.items["de"]
	assert.Equal(t, store.VerdictSkipped, items[0].Verdict)
	assert.Equal(t, store.VerdictInvalidCoords, items[1].Verdict)
	assert.Equal(t, store.VerdictImageReadError, items[2].Verdict)
	assert.Equal(t, store.VerdictOCRError, items[3].Verdict)
	assert.Equal(t, store.VerdictImageNotFound, items[4].Verdict)
	assert.Equal(t, StateCompleted, o.State())
}

func TestRunStopAfterThirdItem(t *testing.T) {
	dir := t.TempDir()
	var items []store.Item
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("W%03d", i)
		writeScreenshot(t, dir, id, "en")
		items = append(items, store.Item{
			Row: i + 1, Run: true, ID: id, Region: calibrated(), ExpectedText: "STOP",
		})
	}
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items:   map[string][]store.Item{"en": items},
	}

	engine := &fakeEngine{text: "STOP"}
	o := New(rows, engine, Config{ImageDir: dir})
	engine.onCall = func(n int) {
		if n == 3 {
			o.Stop()
		}
	}

	_, err := o.Run()
	require.NoError(t, err)
	drain(o)

	assert.Equal(t, StateStopped, o.State())
	assert.Equal(t, 3, engine.calls)
	for i, item := range rows.items["en"] {
		if i < 3 {
			assert.True(t, item.Verdict.Terminal(), "item %d should have a verdict", i+1)
		} else {
			assert.Equal(t, store.VerdictUnset, item.Verdict, "item %d should be untouched", i+1)
		}
	}
	assert.GreaterOrEqual(t, rows.saves, 1, "stop must still flush results")
}

func TestRunPauseAndResume(t *testing.T) {
	dir := t.TempDir()
	var items []store.Item
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("W%03d", i)
		writeScreenshot(t, dir, id, "en")
		items = append(items, store.Item{
			Row: i + 1, Run: true, ID: id, Region: calibrated(), ExpectedText: "STOP",
		})
	}
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items:   map[string][]store.Item{"en": items},
	}

	engine := &fakeEngine{text: "STOP"}
	o := New(rows, engine, Config{ImageDir: dir})
	engine.onCall = func(n int) {
		if n == 2 {
			o.Pause()
		}
	}

	require.NoError(t, o.Start())

	var paused, resumed bool
	done := make(chan []Event, 1)
	go func() {
		var events []Event
		for ev := range o.Events() {
			if ev.Kind == EventState && ev.State == StatePaused {
				paused = true
				o.Resume()
			}
			if paused && ev.Kind == EventState && ev.State == StateRunning {
				resumed = true
			}
			events = append(events, ev)
		}
		done <- events
	}()

	select {
	case events := <-done:
		assert.True(t, paused, "run never paused")
		assert.True(t, resumed, "run never resumed")
		assert.Equal(t, 4, engine.calls, "all items processed after resume")
		var last Event
		for _, ev := range events {
			if ev.Kind == EventDone {
				last = ev
			}
		}
		assert.Equal(t, StateCompleted, last.State)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
	}
}

func TestRunProgressEventsOrdered(t *testing.T) {
	dir := t.TempDir()
	var items []store.Item
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("W%03d", i)
		writeScreenshot(t, dir, id, "en")
		items = append(items, store.Item{
			Row: i + 1, Run: true, ID: id, Region: calibrated(), ExpectedText: "STOP",
		})
	}
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items:   map[string][]store.Item{"en": items},
	}
	o := New(rows, &fakeEngine{text: "STOP"}, Config{ImageDir: dir})

	_, err := o.Run()
	require.NoError(t, err)

	prev := 0
	for _, ev := range drain(o) {
		if ev.Kind != EventItem {
			continue
		}
		assert.Equal(t, prev+1, ev.Done, "item events out of order")
		assert.Equal(t, 5, ev.Total)
		prev = ev.Done
	}
	assert.Equal(t, 5, prev)
}

func TestRunFinishesWithoutEventsConsumer(t *testing.T) {
	// A synchronous run must not depend on anyone reading Events()
	// while it works, regardless of how many events it produces.
	var items []store.Item
	for i := 1; i <= 120; i++ {
		items = append(items, store.Item{
			Row: i + 1, Run: false, ID: fmt.Sprintf("W%03d", i), ExpectedText: "STOP",
		})
	}
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items:   map[string][]store.Item{"en": items},
	}
	o := New(rows, &fakeEngine{}, Config{})

	done := make(chan error, 1)
	go func() {
		_, err := o.Run()
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked without an events consumer")
	}

	itemEvents := 0
	for _, ev := range drain(o) {
		if ev.Kind == EventItem {
			itemEvents++
		}
	}
	assert.Equal(t, 120, itemEvents, "all item events delivered after the run")
	assert.Equal(t, StateCompleted, o.State())
}

func TestRunScanFailureIsFatal(t *testing.T) {
	rows := &fakeStore{failScan: true}
	o := New(rows, &fakeEngine{}, Config{})

	_, err := o.Run()
	require.Error(t, err)
	drain(o)
	assert.Equal(t, StateFailed, o.State())

	var storeErr *store.Error
	assert.ErrorAs(t, err, &storeErr)
}

func TestRunWritesDebugCrops(t *testing.T) {
	dir := t.TempDir()
	cropDir := filepath.Join(dir, "crops")
	writeScreenshot(t, dir, "W001", "en")

	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items: map[string][]store.Item{
			"en": {{Row: 2, Run: true, ID: "W001", Region: calibrated(), ExpectedText: "STOP"}},
		},
	}
	o := New(rows, &fakeEngine{text: "STOP"}, Config{ImageDir: dir, CropDir: cropDir})

	_, err := o.Run()
	require.NoError(t, err)
	drain(o)

	if _, err := os.Stat(filepath.Join(cropDir, "W001_en_crop.png")); err != nil {
		t.Errorf("debug crop not written: %v", err)
	}
}

func TestOverrideSavesImmediately(t *testing.T) {
	rows := &fakeStore{
		locales: []store.LocaleRow{{Code: "en", Run: true}},
		items: map[string][]store.Item{
			"en": {{Row: 2, Run: true, ID: "W001", RecognizedText: "5T0P", Verdict: store.VerdictIncorrect}},
		},
	}

	require.NoError(t, Override(rows, "en", rows.items["en"][0], store.VerdictCorrect))
	assert.Equal(t, store.VerdictCorrect, rows.items["en"][0].Verdict)
	assert.Equal(t, "5T0P", rows.items["en"][0].RecognizedText)
	assert.Equal(t, 1, rows.saves)
}
