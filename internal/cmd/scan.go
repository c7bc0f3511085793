package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/config"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

var scanDetectors []string

var scanCmd = &cobra.Command{
	Use:   "scan [text]",
	Short: "Scan text for PII and print the findings as JSON",
	Long: `Scan text for PII and print the scan result as JSON.

Text is taken from the first argument, or from stdin when no argument
is given (e.g. cat notes.txt | privassist scan).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanDetectors, "detector", nil, `Restrict detectors (e.g. "pattern", "model:hf_ner"); default all`)
	rootCmd.AddCommand(scanCmd)
}

// readInputText returns the positional arg, or stdin when absent.
func readInputText(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func scanOptions() detect.Options {
	opts := detect.Options{}
	for _, d := range scanDetectors {
		opts.Detectors = append(opts.Detectors, detect.Source(d))
	}
	return opts
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "scan")
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

	res, err := pipeline.Scan(ctx, text, scanOptions())
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
