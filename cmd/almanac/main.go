// Package main is the entry point for the almanac command. It serves the
// calendar API and offers one-shot conversions from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	// Zone names resolve even on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/almanac/internal/config"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "almanac",
		Short: "Pluggable calendar systems",
		Long: `almanac converts dates between calendar systems (Gregorian, tabular
Hijri and operator-defined custom calendars) through one canonical instant:
seconds since the Unix epoch.

Configuration comes from environment variables (CALENDAR_TYPE,
USER_TIMEZONE, DEFINITIONS_FILE, ...). Custom calendars from
DEFINITIONS_FILE are available to every command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newCalendarsCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newFormatCmd())
	root.AddCommand(newMonthCmd())
	root.AddCommand(newICSCmd())
	return root
}

// setupLogging configures the global slog logger. Development uses text
// format for readability; everything else uses JSON for log aggregation.
// LOG_LEVEL picks the level, falling back to info.
func setupLogging(cfg *config.Config, w io.Writer) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
