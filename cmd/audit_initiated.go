package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sap8899/reportly/internal/pipeline"
)

var auditInitiatedCmd = &cobra.Command{
	Use:   "initiated",
	Short: "List directory operations the subject user performed",
	RunE: func(cmd *cobra.Command, args []string) error {
		filterSrc, err := cmd.Flags().GetString("filter")
		if err != nil {
			return err
		}
		return runAuditListing(cmd.Context(), pipeline.RoleInitiated, filterSrc)
	},
}

func init() {
	auditCmd.AddCommand(auditInitiatedCmd)

	auditInitiatedCmd.Flags().StringP("filter", "f", "",
		`Row filter expression, e.g. 'event.Category == "UserManagement"'`)
}
