package main

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stimlint",
	Short: "Cross-layer static analyzer for Rails + Stimulus wiring",
	Long: `stimlint cross-references server-rendered ERB views against Stimulus
controllers and ActionCable broadcast call sites, reporting wiring mistakes
(missing targets, out-of-scope actions, value typos, broken outlet selectors,
broadcast handlers that don't exist) before runtime.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fragmentsCmd)

	rootCmd.PersistentFlags().String("config", "", "path to .stimlint.yml")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	cobra.OnInitialize(func() {
		setupLogging()
		setupColor()
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelWarn
	switch lv, _ := rootCmd.PersistentFlags().GetString("log-level"); lv {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func setupColor() {
	switch mode, _ := rootCmd.PersistentFlags().GetString("color"); mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
}
