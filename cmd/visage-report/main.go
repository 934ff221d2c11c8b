// visage-report renders saved analysis output into an HTML chart page and a
// markdown summary.
//
// Usage:
//
//	visage-report [-charts report.html] [-summary report.md] <results file>
//
// The input is any file the analyzer wrote: .json, .csv, .xlsx, or the
// SQLite database.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/report"
	"github.com/visagekit/visage/pkg/storage"
)

func main() {
	charts := flag.String("charts", "report.html", "path for the HTML chart page, empty to skip")
	summary := flag.String("summary", "", "path for the markdown summary, empty to skip")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	log.Init(*logLevel)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: visage-report [flags] <results file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *charts, *summary); err != nil {
		log.Error("report generation failed", "error", err)
		os.Exit(1)
	}
}

func run(input, charts, summary string) error {
	results, err := storage.LoadFile(input)
	if err != nil {
		return err
	}
	log.Info("loaded results", "file", input, "sessions", len(results))

	if charts != "" {
		if err := report.Charts(results, charts); err != nil {
			return err
		}
		log.Info("wrote chart page", "file", charts)
	}
	if summary != "" {
		if err := report.Summary(results, summary); err != nil {
			return err
		}
		log.Info("wrote summary", "file", summary)
	}
	return nil
}
