package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap8899/reportly/internal/config"
	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/pipeline"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run reportly as an interactive console session",
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := newGraphClient(ctx, cfg)
		if err != nil {
			return err
		}

		greetCaller(ctx, client)

		in := bufio.NewScanner(os.Stdin)
		subject, err := promptSubject(in)
		if err != nil {
			return err
		}
		window, err := promptWindow(in)
		if err != nil {
			return err
		}

		return menuLoop(ctx, in, cfg, client, subject, window)
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func printBanner() {
	_, _ = color.New(color.FgMagenta, color.Bold).Println("reportly")
	fmt.Println("know your user.")
	fmt.Println()
}

// greetCaller resolves the signed-in identity, failures here are
// cosmetic only.
func greetCaller(ctx context.Context, client *graph.Client) {
	var me graph.Me
	if err := client.GetObject(ctx, client.MeURL(), &me); err != nil {
		log.Debug().Err(err).Msg("cannot resolve caller identity")
		return
	}
	_, _ = color.New(color.FgGreen, color.Bold).Printf("Hello, %s!\n", me.DisplayName)
	if mail := me.Mail; mail != "" {
		fmt.Printf("Email: %s\n", mail)
	} else {
		fmt.Printf("Email: %s\n", me.UserPrincipalName)
	}
	fmt.Println()
}

func promptSubject(in *bufio.Scanner) (string, error) {
	upn := viperOrAsk(in, UserKey, "UserPrincipalName of the user to audit: ")
	if upn == "" {
		return "", fmt.Errorf("no subject user given")
	}
	return upn, nil
}

func promptWindow(in *bufio.Scanner) (core.TimeWindow, error) {
	from := viperOrAsk(in, FromKey, "Start date (YYYY-MM-DD, exclusive): ")
	to := viperOrAsk(in, ToKey, "End date (YYYY-MM-DD, exclusive): ")
	return core.ParseWindow(from, to)
}

func menuLoop(ctx context.Context, in *bufio.Scanner, cfg *config.Config, client *graph.Client, subject string, window core.TimeWindow) error {
	title := color.New(color.FgCyan, color.Bold)

	for {
		fmt.Println()
		_, _ = title.Println("Please choose one of the following options:")
		fmt.Println("  0) Exit")
		fmt.Println("  1) Display access token")
		fmt.Println("  2) Actions performed by the user")
		fmt.Println("  3) Actions performed on the user")
		fmt.Println("  4) User sign-ins")
		fmt.Println("  5) Full HTML report")
		fmt.Print("> ")

		if !in.Scan() {
			return in.Err()
		}

		var runErr error
		switch strings.TrimSpace(in.Text()) {
		case "0":
			fmt.Println("Goodbye...")
			return nil
		case "1":
			runErr = menuToken(ctx, cfg)
		case "2":
			runErr = menuAudit(ctx, client, subject, window, pipeline.RoleInitiated)
		case "3":
			runErr = menuAudit(ctx, client, subject, window, pipeline.RoleTarget)
		case "4":
			runErr = menuSignIns(ctx, client, subject, window)
		case "5":
			runErr = runFullReport(ctx, cfg, client, subject, window)
		default:
			fmt.Println("Invalid choice!")
			continue
		}
		if runErr != nil {
			log.Error().Err(runErr).Msg("action failed")
		}
	}
}

func menuToken(ctx context.Context, cfg *config.Config) error {
	tok, err := newAuthenticator(cfg).Token(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("User token: %s\n", tok.AccessToken)
	return nil
}

func menuAudit(ctx context.Context, client *graph.Client, subject string, window core.TimeWindow, role pipeline.Role) error {
	var fetchURL, emptyNote string
	switch role {
	case pipeline.RoleInitiated:
		fetchURL = client.AuditInitiatedURL(subject)
		emptyNote = core.NoInitiatedActions
	case pipeline.RoleTarget:
		fetchURL = client.AuditTargetURL(subject)
		emptyNote = core.NoTargetActions
	}

	events, err := graph.FetchAllAs[graph.AuditEvent](ctx, client, fetchURL)
	if err != nil {
		return err
	}
	classified := pipeline.NewClassifier().ClassifyAll(events, role, window, cmdLogger())
	if len(classified) == 0 {
		log.Info().Msg(emptyNote)
		return nil
	}
	renderAuditTable(classified)
	return nil
}

func menuSignIns(ctx context.Context, client *graph.Client, subject string, window core.TimeWindow) error {
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
	renderSignInTable(agg.SignIns)
	renderIPTable(agg.IPs)
	return nil
}

// viperOrAsk prefers the flag/env value and falls back to an
// interactive prompt.
func viperOrAsk(in *bufio.Scanner, key, prompt string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	fmt.Print(prompt)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
