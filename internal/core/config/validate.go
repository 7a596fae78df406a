package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/tabula/internal/backend"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is usable. Field failures are
// reported as criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Table.PageSize < 1 {
		errs = errs.Append("table.page_size", errors.New("must be at least 1"))
	}
	for i, n := range c.Table.PageSizes {
		if n < 1 {
			errs = errs.Append(fmt.Sprintf("table.page_sizes[%d]", i), errors.New("must be at least 1"))
		}
	}
	if c.Table.SearchDebounce < 0 {
		errs = errs.Append("table.search_debounce", errors.New("must not be negative"))
	}
	if c.Table.FetchRetries < 0 {
		errs = errs.Append("table.fetch_retries", errors.New("must not be negative"))
	}
	if c.Table.MutationRetries < 0 || c.Table.MutationRetries > 1 {
		errs = errs.Append("table.mutation_retries", errors.New("must be 0 or 1"))
	}
	if c.Table.RetryBackoff < 0 {
		errs = errs.Append("table.retry_backoff", errors.New("must not be negative"))
	}
	if c.Table.FetchTimeout <= 0 {
		errs = errs.Append("table.fetch_timeout", errors.New("must be positive"))
	}

	if c.Cache.Size < 1 {
		errs = errs.Append("cache.size", errors.New("must be at least 1"))
	}

	if c.Seed.Count < 0 {
		errs = errs.Append("seed.count", errors.New("must not be negative"))
	}
	for i, pattern := range c.Seed.Files {
		if !doublestar.ValidatePathPattern(pattern) {
			errs = errs.Append(fmt.Sprintf("seed.files[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	if c.Backend.Latency < 0 {
		errs = errs.Append("backend.latency", errors.New("must not be negative"))
	}
	if _, err := backend.ParseFaults(c.Backend.Fail); err != nil {
		errs = errs.Append("backend.fail", err)
	}

	if c.Server.Addr == "" {
		errs = errs.Append("server.addr", errors.New("cannot be empty"))
	}

	return errs.ToError()
}

// ValidateDeep runs Validate and additionally checks the filesystem: the
// config file must be a regular file and every seed pattern must match at
// least one file.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if configPath != "" {
		info, err := os.Stat(configPath)
		switch {
		case err == nil && info.IsDir():
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		case err != nil && !os.IsNotExist(err):
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	for i, pattern := range c.Seed.Files {
		if !doublestar.ValidatePathPattern(pattern) {
			continue // reported by Validate
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			errs = errs.Append(fmt.Sprintf("seed.files[%d]", i), err)
			continue
		}
		if len(matches) == 0 {
			errs = errs.Append(fmt.Sprintf("seed.files[%d]", i), fmt.Errorf("pattern %q matches no files", pattern))
		}
	}

	var fieldErrs criterio.FieldErrors
	if err := c.Validate(); err != nil && errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal issues worth surfacing to the user.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.Table.PageSizes) > 0 && !slices.Contains(c.Table.PageSizes, c.Table.PageSize) {
		warnings = append(warnings, ValidationWarning{
			Category: "Table",
			Item:     "page_size",
			Message:  fmt.Sprintf("%d is not one of page_sizes; it is added to the cycle", c.Table.PageSize),
		})
	}

	if len(c.Seed.Files) > 0 && c.Seed.Count != DefaultConfig().Seed.Count {
		warnings = append(warnings, ValidationWarning{
			Category: "Seed",
			Item:     "count",
			Message:  "ignored because seed files are configured",
		})
	}

	if f, err := backend.ParseFaults(c.Backend.Fail); err == nil && f.Rate > 0 && c.Table.FetchRetries == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "fail",
			Message:  "failure injection is enabled but table.fetch_retries is 0",
		})
	}

	return warnings
}

// PageSizeCycle returns the sorted, de-duplicated page sizes including the
// configured default page size.
func (c *Config) PageSizeCycle() []int {
	sizes := slices.Clone(c.Table.PageSizes)
	sizes = append(sizes, c.Table.PageSize)
	slices.Sort(sizes)
	return slices.Compact(sizes)
}
