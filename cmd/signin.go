package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/pipeline"
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "List the subject user's sign-ins and per-address statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		filterSrc, err := cmd.Flags().GetString("filter")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
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

		log.Info().Str("user", subject).Msg("Fetching sign-in events...")
		succeeded, err := graph.FetchAllAs[graph.SignInEvent](ctx, client, client.SignInsURL(subject, true))
		if err != nil {
			return err
		}
		failed, err := graph.FetchAllAs[graph.SignInEvent](ctx, client, client.SignInsURL(subject, false))
		if err != nil {
			return err
		}

		agg := pipeline.NewAggregator(window, cmdLogger())
		agg.Fold(succeeded, core.OutcomeSuccess)
		agg.Fold(failed, core.OutcomeFailed)

		if len(agg.SignIns) == 0 {
			log.Info().Msg(core.NoSignIns)
			return nil
		}

		signIns, err := filterRows(agg.SignIns, filterSrc)
		if err != nil {
			return err
		}

		renderSignInTable(signIns)
		renderIPTable(agg.IPs)

		if highRisk := pipeline.FlagHighRisk(agg.Failed); len(highRisk) > 0 {
			log.Warn().Msgf("Found %d high-risk sign-in failure(s)", len(highRisk))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signinCmd)

	signinCmd.Flags().StringP("filter", "f", "",
		`Row filter expression, e.g. 'event.Type == "failed"'`)
}

func renderSignInTable(signIns []core.ClassifiedSignIn) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Created", "Type", "Resource", "Information"})

	for _, s := range signIns {
		t.AppendRow(table.Row{
			s.Created,
			s.Type,
			truncate(s.Resource, 40),
			truncate(strings.ReplaceAll(s.Information, "\n", " | "), 90),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderIPTable(ips map[string]*core.IPAggregate) {
	if len(ips) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"IP", "Sign-Ins", "Apps Used", "Resources"})

	for ip, agg := range ips {
		t.AppendRow(table.Row{
			ip,
			agg.Count,
			truncate(strings.Join(agg.AppList(), ", "), 50),
			truncate(strings.Join(agg.ResourceList(), ", "), 50),
		})
	}

	t.SortBy([]table.SortBy{{Name: "Sign-Ins", Mode: table.DscNumeric}})
	t.SetStyle(table.StyleLight)
	t.Render()
}
