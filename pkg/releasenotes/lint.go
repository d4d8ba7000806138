package releasenotes

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LintOptions selects the optional checks of Lint.
type LintOptions struct {
	Semver     bool   // version names must be semantic versions
	Descending bool   // versions must be listed newest first
	Title      string // expected top heading, empty to skip
}

// DefaultLintOptions enables every check.
func DefaultLintOptions() LintOptions {
	return LintOptions{Semver: true, Descending: true, Title: DefaultTitle}
}

// Problem is a lint finding.
type Problem struct {
	Line    int    `json:"line"`
	Version string `json:"version,omitempty"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Version == "" {
		return fmt.Sprintf("%d: %s", p.Line, p.Message)
	}
	return fmt.Sprintf("%d: %s: %s", p.Line, p.Version, p.Message)
}

// Lint checks doc. Every version must have at least one bullet; the other
// checks depend on opts.
func Lint(doc *Document, opts LintOptions) []Problem {
	var problems []Problem

	seen := make(map[string]int)
	for _, v := range doc.Versions {
		if len(v.Entries) == 0 {
			problems = append(problems, problemAt(v, "no entries"))
		}
		for i, e := range v.Entries {
			if strings.TrimSpace(e) == "" {
				problems = append(problems, problemAt(v, "entry %d is empty", i+1))
			}
		}
		if first, ok := seen[v.Name]; ok {
			problems = append(problems, problemAt(v, "duplicate version, first seen on line %d", first))
		} else {
			seen[v.Name] = v.Line
		}
	}

	if opts.Semver || opts.Descending {
		problems = append(problems, lintVersions(doc, opts)...)
	}
	if opts.Title != "" && doc.Title != opts.Title {
		problems = append(problems, Problem{Line: 1, Message: fmt.Sprintf("title is %q, want %q", doc.Title, opts.Title)})
	}
	return problems
}

// lintVersions checks version names as semantic versions and their order.
func lintVersions(doc *Document, opts LintOptions) []Problem {
	var problems []Problem
	parsed := make([]*semver.Version, len(doc.Versions))
	allValid := true
	for i, v := range doc.Versions {
		sv, err := semver.NewVersion(v.Name)
		if err != nil {
			allValid = false
			if opts.Semver {
				problems = append(problems, problemAt(v, "not a semantic version: %v", err))
			}
			continue
		}
		parsed[i] = sv
	}

	if opts.Descending && allValid {
		for i := 1; i < len(parsed); i++ {
			if !parsed[i-1].GreaterThan(parsed[i]) && !parsed[i-1].Equal(parsed[i]) {
				problems = append(problems, problemAt(doc.Versions[i], "listed after older version %s", doc.Versions[i-1].Name))
			}
		}
	}
	return problems
}

func problemAt(v Version, format string, args ...any) Problem {
	return Problem{Line: v.Line, Version: v.Name, Message: fmt.Sprintf(format, args...)}
}
