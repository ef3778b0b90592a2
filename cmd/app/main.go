// Command app runs the desktop shell without embedded assets, serving
// the frontend directory directly for development.
package main

import (
	"log"

	"video-subtitle/internal/bootstrap"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
