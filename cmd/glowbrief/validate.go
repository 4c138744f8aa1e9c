package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maharani/glowbrief/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <payload.json>",
	Short: "Validate a submission payload file",
	Long:  "Validates a submission payload JSON file against the schema without submitting it. Useful for checking exported form data before a bulk import.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read payload file %s: %w", args[0], err)
	}

	payload, err := validation.ValidatePayload(raw)
	if err != nil {
		var validationErr *validation.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintf(os.Stderr, "Payload is invalid:\n")
			for _, fieldErr := range validationErr.Errors {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(validationErr.Errors))
		}
		return err
	}

	fmt.Printf("Payload is valid: brand %q targeting %s environment\n",
		payload.Brand.Name, payload.TargetEnvironment)
	return nil
}
