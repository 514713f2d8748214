package main

import (
	"os"

	"panorama-stitcher/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewStitcherCmd(cli.Launch)))
}
