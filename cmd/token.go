package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire a directory access token and display its claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tok, err := newAuthenticator(cfg).Token(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(tok.AccessToken)

		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err != nil {
			// opaque tokens are still usable, just not inspectable
			log.Warn().Err(err).Msg("token is not a decodable JWT")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Claim", "Value"})

		for _, name := range []string{"upn", "name", "oid", "tid", "appid", "scp", "roles"} {
			if v, ok := claims[name]; ok {
				t.AppendRow(table.Row{name, truncate(fmt.Sprintf("%v", v), 80)})
			}
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			t.AppendRow(table.Row{"exp", fmt.Sprintf("%s (%s)",
				exp.Format(time.RFC3339),
				time.Until(exp.Time).Round(time.Minute),
			)})
		}

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
