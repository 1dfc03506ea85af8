// Package main provides the entry point for the localization
// screenshot verifier desktop application.
package main

import (
	"log"

	fyneapp "fyne.io/fyne/v2/app"

	"locshot/internal/app"
	"locshot/internal/version"
	"locshot/ui/mainwindow"
	"locshot/ui/prefs"
)

const appTitle = "Localization Screenshot Verifier"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.New()
	state := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs)
	win.Show()
	fyneApp.Run()

	if err := appPrefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}
