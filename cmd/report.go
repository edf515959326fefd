package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sap8899/reportly/internal/config"
	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/geoip"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/pipeline"
	"github.com/sap8899/reportly/internal/render"
	"github.com/sap8899/reportly/internal/roles"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the full HTML audit report for the subject user",
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		basic, err := cmd.Flags().GetBool("basic")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if basic {
			cfg.Report.Basic = true
		}
		if outFile != "" {
			cfg.Report.OutFile = outFile
		}

		subject, err := subjectUser()
		if err != nil {
			return err
		}
		window, err := analysisWindow()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := newGraphClient(ctx, cfg)
		if err != nil {
			return err
		}

		return runFullReport(ctx, cfg, client, subject, window)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("out", "o", "", "Report output file (overrides config)")
	reportCmd.Flags().Bool("basic", false, "Collect the reduced fact set only")
}

func runFullReport(ctx context.Context, cfg *config.Config, client *graph.Client, subject string, window core.TimeWindow) error {
	roleTable, err := roles.Load(cfg.RolesMap)
	if err != nil {
		return fmt.Errorf("cannot load role table: %w", err)
	}

	builder := &pipeline.Builder{
		Graph:    client,
		Roles:    roleTable,
		Log:      cmdLogger(),
		Extended: !cfg.Report.Basic,
	}
	if cfg.GeoIP.Enabled && !cfg.Report.Basic {
		builder.Geo = geoip.New(geoip.WithBaseURL(cfg.GeoIP.BaseURL))
	}

	log.Info().
		Str("user", subject).
		Str("from", window.Start.Format("2006-01-02")).
		Str("to", window.End.Format("2006-01-02")).
		Msg("Collecting report data...")

	facts, err := builder.Build(ctx, subject, window)
	if err != nil {
		return err
	}
	for _, failure := range facts.Failures {
		log.Warn().Msgf("Partial report: %s", failure)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	if err := renderer.RenderFile(cfg.Report.OutFile, facts); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}

	log.Info().
		Str("run", facts.ReportID).
		Str("file", cfg.Report.OutFile).
		Msg("Your report is ready!")
	return nil
}
