package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sap8899/reportly/internal/pipeline"
)

var auditTargetCmd = &cobra.Command{
	Use:   "target",
	Short: "List directory operations performed on the subject user",
	RunE: func(cmd *cobra.Command, args []string) error {
		filterSrc, err := cmd.Flags().GetString("filter")
		if err != nil {
			return err
		}
		return runAuditListing(cmd.Context(), pipeline.RoleTarget, filterSrc)
	},
}

func init() {
	auditCmd.AddCommand(auditTargetCmd)

	auditTargetCmd.Flags().StringP("filter", "f", "",
		`Row filter expression, e.g. 'event.Result == "success"'`)
}
