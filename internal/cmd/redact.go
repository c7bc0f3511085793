package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/config"
)

var redactJSON bool

var redactCmd = &cobra.Command{
	Use:   "redact [text]",
	Short: "Redact PII from text",
	Long: `Scan text and print it with every finding replaced by a category
placeholder such as [EMAIL_REDACTED].

Text is taken from the first argument, or from stdin when no argument
is given. By default only the redacted text is printed; --json prints
the full result including findings and warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().StringSliceVar(&scanDetectors, "detector", nil, `Restrict detectors (e.g. "pattern", "model:hf_ner"); default all`)
	redactCmd.Flags().BoolVar(&redactJSON, "json", false, "Print the full redaction result as JSON")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "redact")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	text, err := readInputText(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	res, err := pipeline.Redact(ctx, text, scanOptions())
	if err != nil {
		return fmt.Errorf("redacting: %w", err)
	}

	if redactJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Println(res.RedactedText)
	return nil
}
