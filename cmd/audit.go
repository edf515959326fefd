package cmd

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/pipeline"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List audit events initiated by or targeting the subject user",
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

// runAuditListing drives one audit direction end to end: fetch all
// pages, classify against the window, then print.
func runAuditListing(ctx context.Context, role pipeline.Role, filterSrc string) error {
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
	client, err := newGraphClient(ctx, cfg)
	if err != nil {
		return err
	}

	var fetchURL, emptyNote string
	switch role {
	case pipeline.RoleInitiated:
		fetchURL = client.AuditInitiatedURL(subject)
		emptyNote = core.NoInitiatedActions
	case pipeline.RoleTarget:
		fetchURL = client.AuditTargetURL(subject)
		emptyNote = core.NoTargetActions
	}

	log.Info().Str("user", subject).Msg("Fetching audit events...")
	events, err := graph.FetchAllAs[graph.AuditEvent](ctx, client, fetchURL)
	if err != nil {
		return err
	}

	classified := pipeline.NewClassifier().ClassifyAll(events, role, window, cmdLogger())
	if len(classified) == 0 {
		log.Info().Msg(emptyNote)
		return nil
	}

	classified, err = filterRows(classified, filterSrc)
	if err != nil {
		return err
	}

	renderAuditTable(classified)
	return nil
}

func renderAuditTable(events []core.ClassifiedEvent) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"Created", "Category", "Activity", "Result", "Information",
	})

	for _, e := range events {
		t.AppendRow(table.Row{
			e.Created,
			e.Category,
			truncate(e.Activity, 40),
			e.Result,
			truncate(e.Information, 80),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}
