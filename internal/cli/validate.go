package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keepaway/internal/compiler"
	"github.com/roach88/keepaway/internal/engine"
	"github.com/roach88/keepaway/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Workers int                        `json:"workers,omitempty"`
	Modulus ir.Item                    `json:"modulus,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workers-file>",
		Short: "Validate a worker file without simulating it",
		Long: `Parse a worker file and check it for every problem the registry would
reject: duplicate or non-contiguous ids, non-positive divisors, unknown
routing targets and divisors whose LCM overflows.

Unlike run, which stops at the first problem, validate reports all of them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specs, err := LoadWorkers(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d worker(s) from %s", len(specs), path)

	validationErrors := compiler.Validate(specs)

	var modulus ir.Item
	if len(validationErrors) == 0 {
		divisors := make([]ir.Item, len(specs))
		for i, s := range specs {
			divisors[i] = s.Routing.Divisor
		}
		modulus, err = engine.ComputeModulus(divisors)
		if err != nil {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "divisor",
				Message: err.Error(),
				Code:    ErrCodeModulus,
			})
		} else if err := engine.CheckWidth(specs, modulus); err != nil {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "operation",
				Message: err.Error(),
				Code:    ErrCodeModulus,
			})
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(specs), modulus)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, workers int, modulus ir.Item) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Workers: workers, Modulus: modulus})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d workers valid (modulus %d)\n", workers, modulus)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
