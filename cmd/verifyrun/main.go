// Command verifyrun executes a verification run headlessly: it reads
// the workbook, OCRs every runnable item, writes verdicts back, and
// prints the progress stream to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"locshot/internal/ocr"
	"locshot/internal/store"
	"locshot/internal/verify"
)

func main() {
	sheetPath := flag.String("sheet", "", "Path to the XLSX workbook")
	imageDir := flag.String("images", "", "Folder containing {item}_{locale}.png screenshots")
	cropDir := flag.String("crops", "", "Folder for cropped debug output (optional)")
	tessdataDir := flag.String("tessdata", "", "Folder containing Tesseract language data (optional)")
	flag.Parse()

	if *sheetPath == "" || *imageDir == "" {
		fmt.Println("Usage: verifyrun -sheet <items.xlsx> -images <folder> [-crops <folder>] [-tessdata <folder>]")
		os.Exit(1)
	}

	rows, err := store.Open(*sheetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open workbook: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	engine, err := ocr.NewEngine(*tessdataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	run := verify.New(rows, engine, verify.Config{
		ImageDir: *imageDir,
		CropDir:  *cropDir,
	})

	// Ctrl-C finishes the current item, flushes results, and exits.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nStopping after current item...")
		run.Stop()
	}()

	if err := run.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	for ev := range run.Events() {
		switch ev.Kind {
		case verify.EventItem:
			fmt.Printf("[%d/%d] %s %s: %s\n", ev.Done, ev.Total, ev.Locale, ev.Item, ev.Verdict)
		case verify.EventLocale, verify.EventLog, verify.EventState:
			if ev.Message != "" {
				fmt.Printf("%s %s\n", ev.Time.Format("15:04:05"), ev.Message)
			}
		case verify.EventDone:
			if ev.Summary != nil {
				fmt.Println()
				fmt.Println(ev.Summary)
			}
		}
	}

	switch run.State() {
	case verify.StateCompleted, verify.StateStopped:
	default:
		os.Exit(1)
	}
}
