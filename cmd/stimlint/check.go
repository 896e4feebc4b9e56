package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stimlint/internal/config"
	"stimlint/internal/report"
	"stimlint/internal/validate"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags]",
	Short: "Run the wiring validators and report findings",
	Long: `Run all validators (or a chosen subset) over the configured view,
controller, and channel directories. Exits 1 when any finding is produced.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "output format (text|json)")
	checkCmd.Flags().StringSlice("only", nil, "run only the named validators")
	checkCmd.Flags().String("views", "", "override views directory")
	checkCmd.Flags().String("descriptors", "", "read controller metadata from a JSON file instead of running the extractor")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("views"); v != "" {
		cfg.ViewsDir = v
	}
	if d, _ := cmd.Flags().GetString("descriptors"); d != "" {
		cfg.DescriptorFile = d
	}

	runner, err := validate.NewRunner(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	only, _ := cmd.Flags().GetStringSlice("only")
	var findings []validate.Finding
	if len(only) == 0 {
		findings, err = runner.Run(cmd.Context())
	} else {
		for _, name := range only {
			fs, runErr := runner.RunOne(name)
			if runErr != nil {
				return runErr
			}
			findings = append(findings, fs...)
		}
	}
	if err != nil {
		return err
	}

	rep := report.Report{Findings: findings, Cap: cfg.ReportCap}
	if format, _ := cmd.Flags().GetString("format"); format == "json" {
		if err := rep.WriteJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		rep.Write(os.Stdout)
	}

	if !rep.OK() {
		cmd.SilenceErrors = true
		return fmt.Errorf("%d findings", len(findings))
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}
	return config.Load(path, explicit)
}
