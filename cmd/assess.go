package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oncoref/oncoref/internal/assess"
	"github.com/oncoref/oncoref/internal/config"
	"github.com/oncoref/oncoref/internal/gateway"
)

// parseAssessArgs parses the patient ID and options from command line
// arguments. Uses flag.FlagSet for standard Go flag parsing, supporting:
//   - oncoref assess PT-110
//   - oncoref assess PT-110 --top-k 8
//   - oncoref assess --top-k 8 PT-110
func parseAssessArgs(defaultTopK int) (string, int, error) {
	assessFlags := flag.NewFlagSet("assess", flag.ContinueOnError)
	assessFlags.SetOutput(os.Stderr)

	topK := assessFlags.Int("top-k", defaultTopK, "Retrieved chunks per query (1-20)")

	args := []string{}
	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	// Check for positional argument first (oncoref assess PT-110 --top-k 8)
	patientID := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		patientID = args[0]
		args = args[1:]
	}

	if err := assessFlags.Parse(args); err != nil {
		return "", 0, fmt.Errorf("parsing assess flags: %w", err)
	}

	// Flags-first form (oncoref assess --top-k 8 PT-110)
	if patientID == "" && assessFlags.NArg() > 0 {
		patientID = assessFlags.Arg(0)
	}

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return "", 0, fmt.Errorf("usage: oncoref assess <patient-id> [--top-k N]")
	}

	return patientID, assess.ClampTopK(*topK), nil
}

// runAssessCmd performs one assessment and prints the result to stdout.
func runAssessCmd() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	patientID, topK, err := parseAssessArgs(cfg.TopK)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := gateway.New(cfg.APIBase, slog.Default())
	runner := assess.NewRunner(client)

	res, err := runner.Run(ctx, patientID, topK)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	printAssessment(res)
	return nil
}

// printAssessment writes a plain-text rendering of the result.
func printAssessment(res *gateway.AssessResult) {
	badge := assess.Classify(res.Assessment)
	fmt.Printf("Patient:    %s\n", res.PatientID)
	fmt.Printf("Assessment: %s [%s]\n", res.Assessment, badge)
	fmt.Printf("Confidence: %s\n", assess.FormatConfidence(res.Confidence))

	if res.Reasoning != "" {
		fmt.Println()
		fmt.Println(res.Reasoning)
	}

	if len(res.Citations) > 0 {
		fmt.Println()
		fmt.Println("Citations:")
		for i, c := range res.Citations {
			source := "NG12 PDF"
			if c.Source != nil && *c.Source != "" {
				source = *c.Source
			}
			fmt.Printf("  [%d] %s · p.%d · %s\n", i+1, source, c.Page, c.Chunk)
			if c.Excerpt != nil && *c.Excerpt != "" {
				fmt.Printf("      %s\n", *c.Excerpt)
			}
		}
	}
}
