// Package config provides configuration management for the replace filter:
// hierarchical precedence across flags, environment variables, an optional
// config file, and defaults, grounded on the teacher's internal/config
// (Setup panics on error, a package-level singleton exposes the resolved
// configuration).
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file (YAML or JSON)
//  4. Defaults
package config

import (
	"fmt"

	"github.com/replacefilter/replacefilter/internal/errors"
)

// DefaultType is the one MIME type the filter applies to when no
// replace_filter_types directive is given, matching the host's historical
// default.
const DefaultType = "text/html"

// ReplaceFilter is one `replace_filter <pattern> <replacement> [<flags>]`
// directive.
type ReplaceFilter struct {
	Pattern     string
	Replacement string
	Flags       string

	// Inherit marks a scope that intentionally wants its parent's
	// ReplaceFilter rather than declaring its own. Without this marker,
	// a scope with no pattern of its own filters nothing: unlike
	// ReplaceFilterTypes, a substitution is not silently inherited (see
	// DESIGN.md).
	Inherit bool
}

// Empty reports whether no pattern has been configured.
func (r ReplaceFilter) Empty() bool { return r.Pattern == "" }

// Resolved holds the fully merged configuration for one filter instance.
type Resolved struct {
	Filter ReplaceFilter
	Types  []string
}

// Filter is the package-level singleton populated by Setup.
var Filter *Resolved

// Args are the command-line flag values callers collect with the standard
// flag package before calling Setup.
type Args struct {
	ConfigFile  string
	Pattern     string
	Replacement string
	Flags       string
	Types       string // comma-separated, overrides the file/default set
}

// Setup resolves the configuration from file, environment, and args, in
// that increasing order of precedence, and publishes the result as Filter.
// It panics on a configuration error, matching the teacher's convention of
// treating bad configuration as fatal at startup.
func Setup(args Args) {
	resolved, err := setup(args)
	if err != nil {
		panic(err)
	}
	Filter = resolved
}

func setup(args Args) (*Resolved, error) {
	var errs errors.MultiError
	r := &Resolved{Types: []string{DefaultType}}

	if args.ConfigFile != "" {
		fc, err := loadFile(args.ConfigFile)
		if err != nil {
			errs.Add(errors.Wrapf(err, "loading config file %q", args.ConfigFile))
		} else {
			if fc.ReplaceFilter != nil {
				r.Filter = *fc.ReplaceFilter
			}
			if len(fc.ReplaceFilterTypes) > 0 {
				r.Types = fc.ReplaceFilterTypes
			}
		}
	}

	applyEnv(r)

	if args.Pattern != "" {
		r.Filter = ReplaceFilter{Pattern: args.Pattern, Replacement: args.Replacement, Flags: args.Flags}
	}
	if args.Types != "" {
		r.Types = splitTypes(args.Types)
	}

	if r.Filter.Empty() && !r.Filter.Inherit {
		errs.Add(errors.Wrap(errors.ErrEmptyPattern, "resolving replace_filter directive"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r, nil
}

func splitTypes(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// Merge combines an outer scope's resolved configuration with an inner
// scope's directive, implementing the two supplemented inheritance rules:
// ReplaceFilterTypes is the union of outer and inner, but ReplaceFilter
// itself only carries down from outer when inner explicitly sets Inherit.
func Merge(outer Resolved, inner ReplaceFilter, innerTypes []string) Resolved {
	merged := Resolved{Filter: inner}
	if inner.Inherit {
		merged.Filter = outer.Filter
	}

	seen := make(map[string]bool, len(outer.Types)+len(innerTypes))
	for _, t := range outer.Types {
		seen[t] = true
	}
	merged.Types = append(merged.Types, outer.Types...)
	for _, t := range innerTypes {
		if !seen[t] {
			merged.Types = append(merged.Types, t)
			seen[t] = true
		}
	}
	return merged
}

func (r ReplaceFilter) String() string {
	return fmt.Sprintf("replace_filter %q %q %q", r.Pattern, r.Replacement, r.Flags)
}
