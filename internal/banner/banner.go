package banner

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Print writes the startup banner to stdout.
func Print() {
	fig := figure.NewColorFigure("driftwatch", "doom", "cyan", true)
	fig.Print()

	cyan := color.New(color.FgCyan)
	_, _ = cyan.Println("source change detection: detects drift, never certifies its absence")
}
