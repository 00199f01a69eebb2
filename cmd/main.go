package main

import (
	"os"

	"video_trend_ranker/internal/cli"
)

var version = "dev"

func main() {
	// go-flags already printed the error
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
