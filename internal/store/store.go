// Package store persists test items in an XLSX workbook: one selector
// sheet listing locales, plus one sheet of items per locale.
package store

import (
	"fmt"
	"strconv"
	"strings"

	"locshot/pkg/geometry"

	"github.com/xuri/excelize/v2"
)

// Sheet and column layout. The selector sheet holds (runFlag, locale);
// each locale sheet holds one item per row with region coordinates
// stored as x/y/x2/y2.
const (
	LocaleSheet = "Locales"

	colRun        = 1
	colItemID     = 2
	colImage      = 3
	colX          = 4
	colY          = 5
	colX2         = 6
	colY2         = 7
	colExpected   = 8
	colRecognized = 9
	colVerdict    = 10

	headerRow = 1
)

// RunFlagRun marks a locale or item row for processing; any other cell
// value (including empty) means skip.
const RunFlagRun = "RUN"

// Error wraps a row-store read/write failure. Scan-phase failures
// abort a run; save-phase failures are reported but already-computed
// results stay in memory.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("row store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LocaleRow is one entry of the locale selector sheet.
type LocaleRow struct {
	Code string
	Run  bool
}

// Item is one test-item row of a locale sheet.
type Item struct {
	Row            int // 1-based sheet row, for writing results back
	Run            bool
	ID             string
	ImageName      string
	Region         geometry.RectInt
	ExpectedText   string
	RecognizedText string
	Verdict        Verdict
}

// Store is an open XLSX workbook of test items.
type Store struct {
	f    *excelize.File
	path string
}

// Open opens an existing workbook.
func Open(path string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	return &Store{f: f, path: path}, nil
}

// New creates an empty workbook with the locale selector sheet.
func New(path string) *Store {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", LocaleSheet)
	f.SetCellValue(LocaleSheet, "A1", "Run")
	f.SetCellValue(LocaleSheet, "B1", "Locale")
	return &Store{f: f, path: path}
}

// Close releases the workbook without saving.
func (s *Store) Close() error {
	return s.f.Close()
}

// Save writes the workbook back to its path.
func (s *Store) Save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return &Error{Op: "save", Err: err}
	}
	return nil
}

// Locales reads the selector sheet in row order.
func (s *Store) Locales() ([]LocaleRow, error) {
	rows, err := s.f.GetRows(LocaleSheet)
	if err != nil {
		return nil, &Error{Op: "read locales", Err: err}
	}

	var locales []LocaleRow
	for i, row := range rows {
		if i+1 == headerRow {
			continue
		}
		code := cell(row, 2)
		if code == "" {
			continue
		}
		locales = append(locales, LocaleRow{
			Code: code,
			Run:  parseRunFlag(cell(row, 1)),
		})
	}
	return locales, nil
}

// Items reads a locale sheet in row order.
func (s *Store) Items(localeCode string) ([]Item, error) {
	rows, err := s.f.GetRows(localeCode)
	if err != nil {
		return nil, &Error{Op: "read sheet " + localeCode, Err: err}
	}

	var items []Item
	for i, row := range rows {
		if i+1 == headerRow {
			continue
		}
		id := cell(row, colItemID)
		if id == "" {
			continue
		}
		items = append(items, Item{
			Row:            i + 1,
			Run:            parseRunFlag(cell(row, colRun)),
			ID:             id,
			ImageName:      cell(row, colImage),
			Region:         parseRegion(row),
			ExpectedText:   cell(row, colExpected),
			RecognizedText: cell(row, colRecognized),
			Verdict:        Verdict(cell(row, colVerdict)),
		})
	}
	return items, nil
}

// SetResult writes an item's recognized text and verdict back to its
// row.
func (s *Store) SetResult(localeCode string, row int, recognized string, v Verdict) error {
	if err := s.setCell(localeCode, colRecognized, row, recognized); err != nil {
		return err
	}
	return s.setCell(localeCode, colVerdict, row, string(v))
}

// SetRegion writes an item's region back as x/y/x2/y2.
func (s *Store) SetRegion(localeCode string, row int, r geometry.RectInt) error {
	vals := []int{r.X, r.Y, r.Right(), r.Bottom()}
	for i, col := range []int{colX, colY, colX2, colY2} {
		if err := s.setCell(localeCode, col, row, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// PropagateRegion copies a rectangle to every locale sheet containing
// the same item. Locale variants of one screen share a physical
// layout, so a single calibration covers all of them.
func (s *Store) PropagateRegion(itemID string, r geometry.RectInt) error {
	locales, err := s.Locales()
	if err != nil {
		return err
	}
	for _, loc := range locales {
		items, err := s.Items(loc.Code)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.ID == itemID {
				if err := s.SetRegion(loc.Code, item.Row, r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// AddLocale appends a locale to the selector sheet and creates its
// item sheet with a header row.
func (s *Store) AddLocale(code string, run bool) error {
	rows, err := s.f.GetRows(LocaleSheet)
	if err != nil {
		return &Error{Op: "read locales", Err: err}
	}
	next := len(rows) + 1

	flag := "SKIP"
	if run {
		flag = RunFlagRun
	}
	if err := s.setCell(LocaleSheet, 1, next, flag); err != nil {
		return err
	}
	if err := s.setCell(LocaleSheet, 2, next, code); err != nil {
		return err
	}

	if _, err := s.f.NewSheet(code); err != nil {
		return &Error{Op: "create sheet " + code, Err: err}
	}
	header := []string{"Run", "Item", "Image", "X", "Y", "X2", "Y2", "Expected", "Recognized", "Verdict"}
	for i, h := range header {
		if err := s.setCell(code, i+1, headerRow, h); err != nil {
			return err
		}
	}
	return nil
}

// AppendItem adds an item row to a locale sheet and returns its row
// number.
func (s *Store) AppendItem(localeCode string, item Item) (int, error) {
	rows, err := s.f.GetRows(localeCode)
	if err != nil {
		return 0, &Error{Op: "read sheet " + localeCode, Err: err}
	}
	row := len(rows) + 1

	flag := "SKIP"
	if item.Run {
		flag = RunFlagRun
	}
	cells := []any{
		flag, item.ID, item.ImageName,
		item.Region.X, item.Region.Y, item.Region.Right(), item.Region.Bottom(),
		item.ExpectedText, item.RecognizedText, string(item.Verdict),
	}
	for i, v := range cells {
		if err := s.setCell(localeCode, i+1, row, v); err != nil {
			return 0, err
		}
	}
	return row, nil
}

func (s *Store) setCell(sheet string, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return &Error{Op: "cell name", Err: err}
	}
	if err := s.f.SetCellValue(sheet, name, v); err != nil {
		return &Error{Op: "write " + sheet + "!" + name, Err: err}
	}
	return nil
}

// cell returns the 1-based column value of a row, tolerating short
// rows (excelize trims trailing empty cells).
func cell(row []string, col int) string {
	if col-1 < len(row) {
		return strings.TrimSpace(row[col-1])
	}
	return ""
}

func parseRunFlag(v string) bool {
	return strings.EqualFold(v, RunFlagRun)
}

// parseRegion reads x/y/x2/y2 cells into a rectangle. Missing or
// non-numeric cells yield an empty rect, meaning not calibrated.
func parseRegion(row []string) geometry.RectInt {
	x, ok1 := parseInt(cell(row, colX))
	y, ok2 := parseInt(cell(row, colY))
	x2, ok3 := parseInt(cell(row, colX2))
	y2, ok4 := parseInt(cell(row, colY2))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return geometry.RectInt{}
	}
	return geometry.RectInt{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

func parseInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
