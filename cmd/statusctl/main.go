// Command statusctl fetches the current ice skating report from a running
// status service, keeping a local per-day cache so repeated invocations on the
// same date make no network call.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/adrg/xdg"

	"github.com/couchcryptid/prygl-status-service/internal/client"
	"github.com/couchcryptid/prygl-status-service/internal/client/sqlitekv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	endpoint := flag.String("endpoint", "http://localhost:8080/api/status", "status endpoint URL")
	force := flag.Bool("force", false, "bypass both the local daily cache and the server-side cache")
	asJSON := flag.Bool("json", false, "print the raw report JSON")
	noCache := flag.Bool("no-cache", false, "disable the local daily cache")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	var daily *client.CalendarDayCache
	if !*noCache {
		path, err := xdg.CacheFile("prygl-status/status.db")
		if err != nil {
			return fmt.Errorf("resolving cache path: %w", err)
		}
		kv, err := sqlitekv.Open(path)
		if err != nil {
			return fmt.Errorf("opening local cache: %w", err)
		}
		defer kv.Close()
		daily = client.NewCalendarDayCache(kv, nil)
	}

	c := client.New(*endpoint, daily, logger)
	report, err := c.Fetch(context.Background(), *force)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	}

	fmt.Printf("Skating: %s\n", report.CanSkate)
	fmt.Printf("Summary: %s\n", report.Summary)
	if report.SummaryCS != report.Summary {
		fmt.Printf("Shrnutí: %s\n", report.SummaryCS)
	}
	for _, w := range report.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	for _, s := range report.Sources {
		fmt.Printf("Source:  %s <%s>\n", s.Title, s.URI)
	}
	fmt.Printf("Updated: %s\n", report.LastUpdated)
	return nil
}
