// Package mainwindow builds the application window. It is a thin
// adapter: widgets issue commands to the session state and render the
// progress event stream; all verification logic lives in the core.
package mainwindow

import (
	"fmt"
	"strings"

	"locshot/internal/app"
	"locshot/internal/screenshot"
	"locshot/internal/store"
	"locshot/internal/verify"
	"locshot/pkg/geometry"
	uicanvas "locshot/ui/canvas"
	"locshot/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 500

// MainWindow is the application window.
type MainWindow struct {
	win   fyne.Window
	state *app.State
	prefs *prefs.Prefs

	storeEntry *widget.Entry
	imageEntry *widget.Entry
	cropEntry  *widget.Entry
	tessEntry  *widget.Entry

	startBtn  *widget.Button
	pauseBtn  *widget.Button
	resumeBtn *widget.Button
	stopBtn   *widget.Button

	progress *widget.ProgressBar
	status   *widget.Label
	logView  *widget.Label
	logLines []string

	localeSelect *widget.Select
	itemSelect   *widget.Select
	shotCanvas   *uicanvas.SelectCanvas
	expectedText *widget.Label
	ocrText      *widget.Label

	reviewLocale string
	reviewItems  []store.Item
	reviewIndex  int
}

// New creates the main window on the given Fyne app.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	w := &MainWindow{
		win:   fyneApp.NewWindow("Localization Screenshot Verifier"),
		state: state,
		prefs: p,
	}
	w.build()
	w.subscribe()
	w.restorePrefs()
	w.win.Resize(fyne.NewSize(1100, 750))
	return w
}

// Window returns the underlying Fyne window.
func (w *MainWindow) Window() fyne.Window {
	return w.win
}

// Show displays the window.
func (w *MainWindow) Show() {
	w.win.Show()
}

func (w *MainWindow) build() {
	w.storeEntry = widget.NewEntry()
	w.storeEntry.SetPlaceHolder("items.xlsx")
	w.imageEntry = widget.NewEntry()
	w.imageEntry.SetPlaceHolder("screenshot folder")
	w.cropEntry = widget.NewEntry()
	w.cropEntry.SetPlaceHolder("crop output folder (optional)")
	w.tessEntry = widget.NewEntry()
	w.tessEntry.SetPlaceHolder("tessdata folder (optional)")

	openBtn := widget.NewButton("Open", w.onOpenStore)

	w.startBtn = widget.NewButton("Start", w.onStart)
	w.pauseBtn = widget.NewButton("Pause", w.onPause)
	w.resumeBtn = widget.NewButton("Resume", w.onResume)
	w.stopBtn = widget.NewButton("Stop", w.onStop)
	w.setRunButtons(false)

	w.progress = widget.NewProgressBar()
	w.status = widget.NewLabel("No workbook open")
	w.logView = widget.NewLabel("")
	w.logView.Wrapping = fyne.TextWrapWord

	runTab := container.NewBorder(
		container.NewVBox(
			widget.NewForm(
				widget.NewFormItem("Workbook", container.NewBorder(nil, nil, nil, openBtn, w.storeEntry)),
				widget.NewFormItem("Images", w.imageEntry),
				widget.NewFormItem("Crops", w.cropEntry),
				widget.NewFormItem("Tessdata", w.tessEntry),
			),
			container.NewHBox(w.startBtn, w.pauseBtn, w.resumeBtn, w.stopBtn),
			w.progress,
			w.status,
		),
		nil, nil, nil,
		container.NewVScroll(w.logView),
	)

	w.localeSelect = widget.NewSelect(nil, w.onReviewLocale)
	w.itemSelect = widget.NewSelect(nil, w.onReviewItem)
	w.shotCanvas = uicanvas.NewSelectCanvas()
	w.shotCanvas.OnSelect = w.onRegionSelected
	w.expectedText = widget.NewLabel("")
	w.expectedText.Wrapping = fyne.TextWrapWord
	w.ocrText = widget.NewLabel("")
	w.ocrText.Wrapping = fyne.TextWrapWord

	correctBtn := widget.NewButton("Mark Correct", func() { w.onOverride(store.VerdictCorrect) })
	incorrectBtn := widget.NewButton("Mark Incorrect", func() { w.onOverride(store.VerdictIncorrect) })

	reviewTab := container.NewBorder(
		container.NewVBox(
			container.NewHBox(widget.NewLabel("Locale"), w.localeSelect,
				widget.NewLabel("Item"), w.itemSelect),
			widget.NewLabel("Drag on the screenshot to calibrate the text region."),
		),
		container.NewVBox(
			widget.NewForm(
				widget.NewFormItem("Expected", w.expectedText),
				widget.NewFormItem("Recognized", w.ocrText),
			),
			container.NewHBox(correctBtn, incorrectBtn),
		),
		nil, nil,
		container.NewScroll(w.shotCanvas),
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Run", runTab),
		container.NewTabItem("Review", reviewTab),
	)
	w.win.SetContent(tabs)
}

func (w *MainWindow) subscribe() {
	w.state.On(app.EventStoreOpened, func(data interface{}) {
		w.status.SetText(fmt.Sprintf("Opened %v", data))
		w.setRunButtons(false)
		w.startBtn.Enable()
		w.reloadLocales()
	})
	w.state.On(app.EventRunStarted, func(interface{}) {
		w.setRunButtons(true)
	})
	// Run events arrive on the session's forwarding goroutine, so
	// widget updates go through fyne.Do to reach the main loop.
	w.state.On(app.EventRunProgress, func(data interface{}) {
		ev, ok := data.(verify.Event)
		if !ok {
			return
		}
		fyne.Do(func() { w.applyEvent(ev) })
	})
	w.state.On(app.EventRunFinished, func(interface{}) {
		fyne.Do(func() {
			w.setRunButtons(false)
			w.startBtn.Enable()
			w.reloadItems()
		})
	})
}

func (w *MainWindow) applyEvent(ev verify.Event) {
	switch ev.Kind {
	case verify.EventItem:
		if ev.Total > 0 {
			w.progress.SetValue(float64(ev.Done) / float64(ev.Total))
		}
		w.status.SetText(fmt.Sprintf("%s %s: %s (%d/%d)",
			ev.Locale, ev.Item, ev.Verdict, ev.Done, ev.Total))
	case verify.EventLocale, verify.EventLog, verify.EventState:
		if ev.Message != "" {
			w.appendLog(ev.Time.Format("15:04:05") + " " + ev.Message)
		}
	case verify.EventDone:
		if ev.Summary != nil {
			w.appendLog(ev.Summary.String())
		}
	}
}

func (w *MainWindow) appendLog(line string) {
	w.logLines = append(w.logLines, line)
	if len(w.logLines) > maxLogLines {
		w.logLines = w.logLines[len(w.logLines)-maxLogLines:]
	}
	w.logView.SetText(strings.Join(w.logLines, "\n"))
}

func (w *MainWindow) setRunButtons(running bool) {
	if running {
		w.startBtn.Disable()
		w.pauseBtn.Enable()
		w.resumeBtn.Enable()
		w.stopBtn.Enable()
	} else {
		w.startBtn.Disable()
		w.pauseBtn.Disable()
		w.resumeBtn.Disable()
		w.stopBtn.Disable()
	}
}

func (w *MainWindow) onOpenStore() {
	path := w.storeEntry.Text
	if path == "" {
		dialog.ShowInformation("Open workbook", "Enter the workbook path first.", w.win)
		return
	}
	w.savePrefs()
	if err := w.state.OpenStore(path); err != nil {
		dialog.ShowError(err, w.win)
	}
}

func (w *MainWindow) onStart() {
	w.state.ImageDir = w.imageEntry.Text
	w.state.CropDir = w.cropEntry.Text
	w.state.TessdataDir = w.tessEntry.Text
	w.savePrefs()

	if err := w.state.StartRun(); err != nil {
		dialog.ShowError(err, w.win)
	}
}

func (w *MainWindow) onPause() {
	if run := w.state.Run(); run != nil {
		run.Pause()
	}
}

func (w *MainWindow) onResume() {
	if run := w.state.Run(); run != nil {
		run.Resume()
	}
}

func (w *MainWindow) onStop() {
	if run := w.state.Run(); run != nil {
		run.Stop()
	}
}

func (w *MainWindow) reloadLocales() {
	rows := w.state.Store()
	if rows == nil {
		return
	}
	locales, err := rows.Locales()
	if err != nil {
		w.appendLog(err.Error())
		return
	}
	options := make([]string, len(locales))
	for i, loc := range locales {
		options[i] = loc.Code
	}
	w.localeSelect.Options = options
	w.localeSelect.Refresh()
}

func (w *MainWindow) onReviewLocale(code string) {
	w.reviewLocale = code
	w.reloadItems()
}

func (w *MainWindow) reloadItems() {
	rows := w.state.Store()
	if rows == nil || w.reviewLocale == "" {
		return
	}
	items, err := rows.Items(w.reviewLocale)
	if err != nil {
		w.appendLog(err.Error())
		return
	}
	w.reviewItems = items

	options := make([]string, len(items))
	for i, item := range items {
		options[i] = item.ID
	}
	w.itemSelect.Options = options
	w.itemSelect.Refresh()
}

func (w *MainWindow) onReviewItem(id string) {
	for i, item := range w.reviewItems {
		if item.ID == id {
			w.reviewIndex = i
			w.showReviewItem(item)
			return
		}
	}
}

func (w *MainWindow) showReviewItem(item store.Item) {
	img, err := screenshot.Load(w.state.ImageDir, item.ImageName, item.ID, w.reviewLocale)
	if err != nil {
		w.appendLog(err.Error())
		w.shotCanvas.SetImage(nil)
	} else {
		w.shotCanvas.SetImage(img)
		w.shotCanvas.SetRegion(item.Region)
	}

	exp, ocr := verify.Highlight(item.ExpectedText, item.RecognizedText, w.reviewLocale)
	w.expectedText.SetText(exp)
	if item.RecognizedText == "" {
		w.ocrText.SetText("(no OCR result)")
	} else {
		w.ocrText.SetText(ocr + "  [" + string(item.Verdict) + "]")
	}
}

func (w *MainWindow) onRegionSelected(r geometry.RectInt) {
	if w.reviewIndex >= len(w.reviewItems) {
		return
	}
	item := w.reviewItems[w.reviewIndex]
	item.Region = r

	if err := w.state.SetRegion(w.reviewLocale, item.ID, item); err != nil {
		dialog.ShowError(err, w.win)
		return
	}
	w.reviewItems[w.reviewIndex] = item
	w.shotCanvas.SetRegion(r)
	w.appendLog(fmt.Sprintf("region for %s set to x=%d y=%d w=%d h=%d (all locales)",
		item.ID, r.X, r.Y, r.Width, r.Height))
}

func (w *MainWindow) onOverride(v store.Verdict) {
	rows := w.state.Store()
	if rows == nil || w.reviewIndex >= len(w.reviewItems) {
		return
	}
	item := w.reviewItems[w.reviewIndex]
	if err := verify.Override(rows, w.reviewLocale, item, v); err != nil {
		dialog.ShowError(err, w.win)
		return
	}
	item.Verdict = v
	w.reviewItems[w.reviewIndex] = item
	w.showReviewItem(item)
}

func (w *MainWindow) restorePrefs() {
	w.storeEntry.SetText(w.prefs.String(prefs.KeyStorePath))
	w.imageEntry.SetText(w.prefs.String(prefs.KeyImageDir))
	w.cropEntry.SetText(w.prefs.String(prefs.KeyCropDir))
	w.tessEntry.SetText(w.prefs.String(prefs.KeyTessdataDir))
	w.state.ImageDir = w.imageEntry.Text
	w.state.CropDir = w.cropEntry.Text
	w.state.TessdataDir = w.tessEntry.Text
}

func (w *MainWindow) savePrefs() {
	w.prefs.SetString(prefs.KeyStorePath, w.storeEntry.Text)
	w.prefs.SetString(prefs.KeyImageDir, w.imageEntry.Text)
	w.prefs.SetString(prefs.KeyCropDir, w.cropEntry.Text)
	w.prefs.SetString(prefs.KeyTessdataDir, w.tessEntry.Text)
	if err := w.prefs.Save(); err != nil {
		w.appendLog("failed to save preferences: " + err.Error())
	}
}
