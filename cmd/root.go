package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap8899/reportly/internal/buildinfo"
	"github.com/sap8899/reportly/internal/logging"
)

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"

	ConfigKey = "config"
	UserKey   = "user"
	FromKey   = "from"
	ToKey     = "to"
)

var rootCmd = &cobra.Command{
	Use:   "reportly",
	Short: fmt.Sprintf("Reportly (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `Reportly audits a single directory identity: it pulls time-bounded
	audit, sign-in, role, group and ownership records from Microsoft Graph
	and reduces them into a report with anomaly signals.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Options{
			Level:   viper.GetString(LogLevelKey),
			Format:  viper.GetString(LogFormatKey),
			NoColor: viper.GetBool(LogNoColorKey),
		})
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().String("config", "reportly.yaml", "Configuration file")
	_ = viper.BindPFlag(ConfigKey, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().StringP("user", "u", "", "UserPrincipalName of the audited user")
	_ = viper.BindPFlag(UserKey, rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().String("from", "", "Start date of the analysis window (YYYY-MM-DD, exclusive)")
	_ = viper.BindPFlag(FromKey, rootCmd.PersistentFlags().Lookup("from"))

	rootCmd.PersistentFlags().String("to", "", "End date of the analysis window (YYYY-MM-DD, exclusive)")
	_ = viper.BindPFlag(ToKey, rootCmd.PersistentFlags().Lookup("to"))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(LogNoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	viper.SetEnvPrefix("REPORTLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
