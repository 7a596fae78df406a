package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/core/config"
	"github.com/hay-kot/tabula/internal/devseed"
	"github.com/hay-kot/tabula/internal/printer"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates the config command group.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config commands to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Check the configuration and show what it resolves to",
				UsageText: "tabula config validate [--format text|json]",
				Description: `Validates the configuration file, then prints the effective table
options, the page size cycle used by +/- in the TUI, the seed source with
the number of items each seed file contributes, and the fault injection
settings of the mock backend.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.validate,
			},
		},
	})

	return app
}

// configReport is what a configuration resolves to.
type configReport struct {
	Path     string                     `json:"path"`
	Valid    bool                       `json:"valid"`
	Errors   []reportError              `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	Table    tableReport                `json:"table"`
	Seed     seedReport                 `json:"seed"`
	Backend  backendReport              `json:"backend"`
}

type reportError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type tableReport struct {
	PageSize        int    `json:"page_size"`
	PageSizeCycle   []int  `json:"page_size_cycle"`
	SearchDebounce  string `json:"search_debounce"`
	FetchRetries    int    `json:"fetch_retries"`
	MutationRetries int    `json:"mutation_retries"`
	RetryBackoff    string `json:"retry_backoff"`
	FetchTimeout    string `json:"fetch_timeout"`
	CacheSize       int    `json:"cache_size"`
}

type seedReport struct {
	// Source is "generated" or "files".
	Source string     `json:"source"`
	Items  int        `json:"items"`
	Files  []seedFile `json:"files,omitempty"`
}

type seedFile struct {
	Path  string `json:"path"`
	Items int    `json:"items"`
}

type backendReport struct {
	Latency  string  `json:"latency"`
	FailRate float64 `json:"fail_rate"`
	FailCode int     `json:"fail_code,omitempty"`
}

func (cmd *ConfigCmd) validate(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	report, err := resolveConfig(cmd.flags.Config, cmd.flags.ConfigPath)

	switch cmd.format {
	case "json":
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return fmt.Errorf("encode report: %w", encErr)
		}
		if err != nil {
			return cli.Exit("", 1)
		}
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format %q, expected text or json", cmd.format)
	}

	p := printer.Ctx(ctx)
	for _, w := range report.Warnings {
		msg := w.Message
		if w.Item != "" {
			msg = w.Item + ": " + msg
		}
		p.Warnf("%s: %s", w.Category, msg)
	}

	if err != nil {
		return err
	}

	if err := writeConfigReport(c.Root().Writer, report); err != nil {
		return err
	}
	p.Successf("Configuration is valid")
	return nil
}

// resolveConfig validates cfg and describes its effective values. Seed files
// are loaded so that decode errors surface here rather than at startup. The
// returned error holds criterio.FieldErrors.
func resolveConfig(cfg *config.Config, path string) (configReport, error) {
	var errs criterio.FieldErrorsBuilder
	var fieldErrs criterio.FieldErrors
	if err := cfg.ValidateDeep(path); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	opts := cfg.TableOptions()
	report := configReport{
		Path:     path,
		Warnings: cfg.Warnings(),
		Table: tableReport{
			PageSize:        opts.PageSize,
			PageSizeCycle:   cfg.PageSizeCycle(),
			SearchDebounce:  opts.SearchDebounce.String(),
			FetchRetries:    opts.FetchRetries,
			MutationRetries: opts.MutationRetries,
			RetryBackoff:    opts.RetryBackoff.String(),
			FetchTimeout:    opts.FetchTimeout.String(),
			CacheSize:       opts.CacheSize,
		},
		Seed: seedReport{Source: "generated", Items: cfg.Seed.Count},
	}

	if len(cfg.Seed.Files) > 0 {
		report.Seed = seedReport{Source: "files"}
		for i, pattern := range cfg.Seed.Files {
			// bad or empty patterns are reported by ValidateDeep
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				continue
			}
			for _, match := range matches {
				items, err := devseed.Load(match)
				if err != nil {
					errs = errs.Append(fmt.Sprintf("seed.files[%d]", i), err)
					continue
				}
				report.Seed.Files = append(report.Seed.Files, seedFile{Path: match, Items: len(items)})
				report.Seed.Items += len(items)
			}
		}
	}

	if faults, err := cfg.Faults(); err == nil {
		report.Backend = backendReport{Latency: faults.Latency.String(), FailRate: faults.Rate}
		if faults.Rate > 0 {
			report.Backend.FailCode = faults.StatusCode()
		}
	}

	err := errs.ToError()
	if err != nil {
		_ = errors.As(err, &fieldErrs)
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, reportError{Field: fe.Field, Message: fe.Err.Error()})
		}
	}
	report.Valid = err == nil
	return report, err
}

func writeConfigReport(w io.Writer, r configReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "config\t%s\n", r.Path)
	_, _ = fmt.Fprintf(tw, "page size\t%d (cycle %s)\n", r.Table.PageSize, joinInts(r.Table.PageSizeCycle))
	_, _ = fmt.Fprintf(tw, "search debounce\t%s\n", r.Table.SearchDebounce)
	_, _ = fmt.Fprintf(tw, "retries\tfetch %d, mutation %d, backoff %s\n", r.Table.FetchRetries, r.Table.MutationRetries, r.Table.RetryBackoff)
	_, _ = fmt.Fprintf(tw, "fetch timeout\t%s\n", r.Table.FetchTimeout)
	_, _ = fmt.Fprintf(tw, "cache size\t%d queries\n", r.Table.CacheSize)

	if r.Seed.Source == "files" {
		_, _ = fmt.Fprintf(tw, "seed\t%d items from %d files\n", r.Seed.Items, len(r.Seed.Files))
		for _, f := range r.Seed.Files {
			_, _ = fmt.Fprintf(tw, "\t%s %s (%d)\n", printer.Dot, f.Path, f.Items)
		}
	} else {
		_, _ = fmt.Fprintf(tw, "seed\t%d generated items\n", r.Seed.Items)
	}

	if r.Backend.FailRate > 0 {
		_, _ = fmt.Fprintf(tw, "faults\tlatency %s, fail rate %.2f with %d\n", r.Backend.Latency, r.Backend.FailRate, r.Backend.FailCode)
	} else {
		_, _ = fmt.Fprintf(tw, "faults\tlatency %s, no failures\n", r.Backend.Latency)
	}

	return tw.Flush()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
