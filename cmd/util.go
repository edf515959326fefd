package cmd

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/sap8899/reportly/internal/config"
	"github.com/sap8899/reportly/internal/core"
	"github.com/sap8899/reportly/internal/graph"
	"github.com/sap8899/reportly/internal/logging"
	"github.com/sap8899/reportly/internal/msauth"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString(ConfigKey))
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, nil
}

func subjectUser() (string, error) {
	upn := viper.GetString(UserKey)
	if upn == "" {
		return "", fmt.Errorf("no subject user given (use --user)")
	}
	return upn, nil
}

func analysisWindow() (core.TimeWindow, error) {
	from, to := viper.GetString(FromKey), viper.GetString(ToKey)
	if from == "" || to == "" {
		return core.TimeWindow{}, fmt.Errorf("no analysis window given (use --from and --to)")
	}
	return core.ParseWindow(from, to)
}

// devicePrompt shows the device-code sign-in instructions on the
// terminal, outside the structured log stream.
func devicePrompt(userCode, verificationURI string) {
	bold := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	_, _ = bold.Printf("  To sign in, open %s and enter the code %s\n", verificationURI, userCode)
	fmt.Println()
}

func newAuthenticator(cfg *config.Config) *msauth.Authenticator {
	return msauth.New(cfg.Azure, devicePrompt)
}

func newGraphClient(ctx context.Context, cfg *config.Config) (*graph.Client, error) {
	ts, err := newAuthenticator(cfg).TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot authenticate: %w", err)
	}
	return graph.New(ts,
		graph.WithBaseURL(cfg.Graph.BaseURL),
		graph.WithTimeout(cfg.Graph.Timeout),
		graph.WithRateLimit(cfg.Graph.RateLimit),
	), nil
}

func cmdLogger() logging.InternalLogger {
	return logging.NewZLogger(log.Logger)
}

// compileRowFilter compiles an expr predicate evaluated once per output
// row, with the row bound as "event".
func compileRowFilter(src string, sample any) (*vm.Program, error) {
	prog, err := expr.Compile(src,
		expr.Env(map[string]any{"event": sample}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return prog, nil
}

func filterRows[T any](rows []T, src string) ([]T, error) {
	if src == "" {
		return rows, nil
	}
	var sample T
	prog, err := compileRowFilter(src, sample)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		keep, err := expr.Run(prog, map[string]any{"event": row})
		if err != nil {
			return nil, fmt.Errorf("cannot evaluate filter: %w", err)
		}
		if keep.(bool) {
			out = append(out, row)
		}
	}
	return out, nil
}

// truncate shortens cell values for terminal tables.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
