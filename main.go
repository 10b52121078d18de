package main

import (
	"os"

	"github.com/arrearly/arrearly/internal/app"
	log "github.com/sirupsen/logrus"
)

func main() {
	configureLogging()

	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}

// configureLogging sets the logrus level from LOG_LEVEL, defaulting to info.
func configureLogging() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		log.SetLevel(log.InfoLevel)
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", level, err)
	}
	log.SetLevel(parsed)
}
