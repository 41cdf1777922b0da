package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var auditAccessorID string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect sealed audit records",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the sealed audit record for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  auditShow,
}

func init() {
	auditShowCmd.Flags().StringVar(&auditAccessorID, "accessor", "legalforged-cli", "identity recorded in the run's access log for this read")
	auditCmd.AddCommand(auditShowCmd)
}

func auditShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	runID := args[0]
	record, ok := current.auditStore.Get(ctx, runID, auditAccessorID)
	if !ok {
		return fmt.Errorf("no sealed audit record for run %s", runID)
	}

	fmt.Printf("run %s (tenant %s)\n", record.RunID, record.TenantID)
	fmt.Printf("success: %v, sealed at %s, duration %s\n", record.Success, record.SealedAt.Format("2006-01-02T15:04:05Z07:00"), record.Duration)
	if record.ErrorCause != "" {
		fmt.Printf("error: %s\n", record.ErrorCause)
	}
	fmt.Printf("tokens: %d in / %d out, cost: $%.4f\n", record.InputTokens, record.OutputTokens, record.CostTotal)
	fmt.Printf("output hash: %s\n", record.OutputHash)
	fmt.Printf("context hash: %s\n", record.ContextHash)
	fmt.Printf("input hash: %s\n", record.InputHash)
	if len(record.SourcesUsed) > 0 {
		fmt.Printf("sources used: %s\n", strings.Join(record.SourcesUsed, ", "))
	}
	if len(record.PIIReport) > 0 {
		fmt.Printf("PII detections: %d\n", len(record.PIIReport))
	}
	fmt.Printf("trace: %d turn(s)\n", len(record.Trace))
	return nil
}
