// Command sheetbuild creates a verification workbook from an XML
// resource bundle, correlating every item with its per-locale
// screenshot.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"locshot/internal/locale"
	"locshot/internal/resource"
	"locshot/internal/screenshot"
	"locshot/internal/store"
)

func main() {
	bundlePath := flag.String("resources", "", "Path to the XML resource bundle")
	imageDir := flag.String("images", "", "Folder containing {item}_{locale}.png screenshots")
	outPath := flag.String("out", "items.xlsx", "Output workbook path")
	flag.Parse()

	if *bundlePath == "" {
		fmt.Println("Usage: sheetbuild -resources <bundle.xml> [-images <folder>] [-out items.xlsx]")
		os.Exit(1)
	}

	bundle, err := resource.Load(*bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load resources: %v\n", err)
		os.Exit(1)
	}

	locales := bundle.Locales()
	itemIDs := bundle.ItemIDs()
	fmt.Printf("Loaded %d items across %d locales\n", len(itemIDs), len(locales))

	rows := store.New(*outPath)
	missing := 0

	for _, code := range locales {
		if !locale.Known(code) {
			fmt.Printf("Note: %s has no OCR language profile, will use %s\n", code, locale.DefaultProfile)
		}
		if err := rows.AddLocale(code, true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add locale %s: %v\n", code, err)
			os.Exit(1)
		}

		for _, id := range itemIDs {
			text, ok := bundle.Text(id, code)
			if !ok {
				continue
			}

			name := screenshot.ImageName(id, code)
			if *imageDir != "" {
				if _, err := os.Stat(filepath.Join(*imageDir, name)); err != nil {
					fmt.Printf("Missing screenshot: %s\n", name)
					missing++
				}
			}

			_, err := rows.AppendItem(code, store.Item{
				Run:          true,
				ID:           id,
				ImageName:    name,
				ExpectedText: text,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to add item %s/%s: %v\n", code, id, err)
				os.Exit(1)
			}
		}
	}

	if err := rows.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s", *outPath)
	if missing > 0 {
		fmt.Printf(" (%d screenshots missing)", missing)
	}
	fmt.Println()
	fmt.Println("Regions are uncalibrated; use the app's Review tab to drag-select each item once.")
}
