package main

import (
	"os"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
