package main

import (
	"os"

	"github.com/ashwanth2007/TheVibeCoders/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
