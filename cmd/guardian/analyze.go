package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	guardian "github.com/guardianai/client-go"
)

var (
	flagModelVersion   string
	flagComplianceMode string
	flagJSON           bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze text for threats",
	Long: `Analyze text for threats. The text is taken from the argument,
or from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagModelVersion, "model-version", "", "pin the analysis model version")
	analyzeCmd.Flags().StringVar(&flagComplianceMode, "compliance-mode", "", "set the compliance mode")
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "print the raw result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := inputText(args)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	var opts []guardian.AnalyzeOption
	if flagModelVersion != "" {
		opts = append(opts, guardian.WithModelVersion(flagModelVersion))
	}
	if flagComplianceMode != "" {
		opts = append(opts, guardian.WithComplianceMode(flagComplianceMode))
	}

	result, err := client.Analyze(cmd.Context(), text, opts...)
	if err != nil {
		var gerr *guardian.Error
		if errors.As(err, &gerr) && gerr.Kind == guardian.KindRateLimit && gerr.RetryAfter > 0 {
			return fmt.Errorf("%w (retry after %s)", err, gerr.RetryAfter)
		}
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Request ID: %s\n", result.RequestID)
	fmt.Printf("Risk score: %.0f\n", result.RiskScore)
	if len(result.ThreatsDetected) == 0 {
		fmt.Println("No threats detected.")
		return nil
	}
	fmt.Println("Threats:")
	for _, threat := range result.ThreatsDetected {
		line := fmt.Sprintf("  - %s (confidence %.2f)", threat.Category, threat.ConfidenceScore)
		if threat.Details != "" {
			line += ": " + threat.Details
		}
		fmt.Println(line)
	}
	return nil
}

// inputText returns the argument text, or stdin when none is given.
func inputText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
