// Package validator lints state machine configurations beyond the hard checks
// statemachine.New applies, and offers fixes for what it finds.
package validator

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-fsm/statemachine"
)

// ValidationResult contains the results of validating a state machine config.
type ValidationResult struct {
	Valid    bool
	Errors   []Issue
	Warnings []Issue
	Notes    []Issue
}

// Issue is a single finding.
type Issue struct {
	Code     string   // Issue code like "UNREACHABLE_STATE", "SELF_LOOP"
	Message  string   // Human-readable message
	Location Location // Where the issue occurred
	Fix      *Fix     // Optional auto-fix
}

// Location identifies where an issue occurred.
type Location struct {
	File       string // Config file path
	Transition string // Transition name if applicable
	Index      int    // Position in the transition table, -1 if not applicable
	State      string // State name if applicable
}

// Validate runs the default rules against config.
func Validate(config *statemachine.Config) ValidationResult {
	return ValidateWithRules(config, DefaultRules(), false)
}

// ValidateStrict runs the default rules and treats warnings as errors.
func ValidateStrict(config *statemachine.Config) ValidationResult {
	return ValidateWithRules(config, DefaultRules(), true)
}

// ValidateFile loads a config from a file and validates it. Only read and
// syntax failures are returned as an error; everything else is reported in the result.
func ValidateFile(path string, strict bool) (ValidationResult, error) {
	config, err := loadFile(path)
	if err != nil {
		return ValidationResult{
			Valid: false,
			Errors: []Issue{
				{
					Code:     CodeLoadFailed,
					Message:  fmt.Sprintf("Failed to load config: %v", err),
					Location: Location{File: path, Index: -1},
				},
			},
		}, err
	}

	result := ValidateWithRules(config, DefaultRules(), strict)

	// Set file location for every issue
	for _, issues := range [][]Issue{result.Errors, result.Warnings, result.Notes} {
		for i := range issues {
			if issues[i].Location.File == "" {
				issues[i].Location.File = path
			}
		}
	}

	return result, nil
}

// ValidateWithRules validates using custom rules. In strict mode every
// warning is reported as an error.
func ValidateWithRules(config *statemachine.Config, rules []Rule, strict bool) ValidationResult {
	var result ValidationResult

	if config == nil {
		config = &statemachine.Config{}
	}

	for _, rule := range rules {
		severity := rule.Severity()
		if strict && severity == SeverityWarning {
			severity = SeverityError
		}

		issues := rule.Check(config)

		switch severity {
		case SeverityError:
			result.Errors = append(result.Errors, issues...)
		case SeverityWarning:
			result.Warnings = append(result.Warnings, issues...)
		case SeverityInfo:
			result.Notes = append(result.Notes, issues...)
		}
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// HasErrors returns true if the result has any errors.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Fixes returns the fixes attached to errors and warnings, in report order.
func (r ValidationResult) Fixes() []*Fix {
	var fixes []*Fix

	for _, issues := range [][]Issue{r.Errors, r.Warnings} {
		for _, issue := range issues {
			if issue.Fix != nil {
				fixes = append(fixes, issue.Fix)
			}
		}
	}

	return fixes
}

// String returns a human-readable summary of validation results.
func (r ValidationResult) String() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("✓ Configuration is valid\n")
	} else {
		fmt.Fprintf(&sb, "✗ Configuration has %d error(s)\n", len(r.Errors))
		writeIssues(&sb, r.Errors, true)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "\n⚠ %d warning(s):\n", len(r.Warnings))
		writeIssues(&sb, r.Warnings, true)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintf(&sb, "\n%d note(s):\n", len(r.Notes))
		writeIssues(&sb, r.Notes, false)
	}

	return sb.String()
}

func writeIssues(sb *strings.Builder, issues []Issue, withFix bool) {
	for _, issue := range issues {
		fmt.Fprintf(sb, "  [%s] %s\n", issue.Code, issue.Message)

		if withFix && issue.Fix != nil {
			fmt.Fprintf(sb, "    Fix: %s\n", issue.Fix.Description)
		}
	}
}
