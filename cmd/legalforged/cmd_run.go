package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legalforge/internal/domain"
	"legalforge/internal/supervisor"
)

var (
	runRequestFile string
	runTenantID    string
	runUserID      string
	runTaskKind    string
	runQuery       string
	runDocPaths    []string
)

// requestFile is the on-disk shape of a --request submission: every field
// supervisor.Submit needs, as plain JSON rather than a flag per option.
type requestFile struct {
	TenantID     string              `json:"tenant_id"`
	UserID       string              `json:"user_id"`
	TaskKind     string              `json:"task_kind"`
	DocumentType string              `json:"document_type"`
	Query        string              `json:"query"`
	ExternalDocs []requestDocument   `json:"external_docs"`
	Config       domain.ConfigBundle `json:"config"`
}

type requestDocument struct {
	SourceID string            `json:"source_id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a document-generation run and print its result",
	Long: `Runs one request through the analyser/researcher/drafter/critic/formatter
chain to completion, printing the final document (or the failure reason)
once the run reaches a terminal status.

The request is read from a JSON file via --request (tenant_id, user_id,
task_kind, document_type, query, external_docs, config — matching
supervisor.Submit); --tenant, --query and --doc let a caller submit a
simple one-off request without writing a file.`,
	RunE: runSubmit,
}

func init() {
	runCmd.Flags().StringVar(&runRequestFile, "request", "", "path to a JSON request file")
	runCmd.Flags().StringVar(&runTenantID, "tenant", "", "tenant id (ignored if --request is set)")
	runCmd.Flags().StringVar(&runUserID, "user", "", "requesting user id (ignored if --request is set)")
	runCmd.Flags().StringVar(&runTaskKind, "task", "draft", "task kind: draft, review, summarise, answer (ignored if --request is set)")
	runCmd.Flags().StringVar(&runQuery, "query", "", "the request text (ignored if --request is set)")
	runCmd.Flags().StringArrayVar(&runDocPaths, "doc", nil, "path to an external document to attach, repeatable (ignored if --request is set)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	sub, err := buildSubmission()
	if err != nil {
		return err
	}
	if sub.TenantID == "" {
		return fmt.Errorf("a tenant id is required: set --tenant or tenant_id in --request")
	}
	if strings.TrimSpace(sub.Query) == "" {
		return fmt.Errorf("a request needs query text: set --query or query in --request")
	}

	state := supervisor.NewRun(sub)
	logger.Info("submitting run", zap.String("run_id", state.RunID), zap.String("tenant_id", sub.TenantID), zap.String("task_kind", string(sub.TaskKind)))

	executor := current.executorFor(sub.TenantID)
	if err := executor.Run(ctx, state); err != nil {
		return fmt.Errorf("run %s failed: %w", state.RunID, err)
	}

	return printRunResult(state)
}

// buildSubmission prefers a --request JSON file; falling back to the
// individual flags lets a caller fire a one-off request without one.
func buildSubmission() (supervisor.Submit, error) {
	if runRequestFile == "" {
		docs, err := loadExternalDocs(runDocPaths)
		if err != nil {
			return supervisor.Submit{}, err
		}
		return supervisor.Submit{
			TenantID:     runTenantID,
			UserID:       runUserID,
			TaskKind:     domain.TaskKind(runTaskKind),
			Query:        runQuery,
			ExternalDocs: docs,
		}, nil
	}

	data, err := os.ReadFile(runRequestFile)
	if err != nil {
		return supervisor.Submit{}, fmt.Errorf("reading request file: %w", err)
	}
	var req requestFile
	if err := json.Unmarshal(data, &req); err != nil {
		return supervisor.Submit{}, fmt.Errorf("parsing request file: %w", err)
	}

	docs := make([]domain.ExternalDocument, len(req.ExternalDocs))
	for i, d := range req.ExternalDocs {
		docs[i] = domain.ExternalDocument{SourceID: d.SourceID, Text: d.Text, Metadata: d.Metadata}
	}

	return supervisor.Submit{
		TenantID:     req.TenantID,
		UserID:       req.UserID,
		TaskKind:     domain.TaskKind(req.TaskKind),
		DocumentType: req.DocumentType,
		Query:        req.Query,
		ExternalDocs: docs,
		Config:       req.Config,
	}, nil
}

func loadExternalDocs(paths []string) ([]domain.ExternalDocument, error) {
	docs := make([]domain.ExternalDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading external document %s: %w", p, err)
		}
		docs = append(docs, domain.ExternalDocument{
			SourceID: p,
			Text:     string(data),
		})
	}
	return docs, nil
}

func printRunResult(state *domain.RunState) error {
	fmt.Printf("run %s: %s\n", state.RunID, state.Status)
	if state.ErrorCause != "" {
		fmt.Printf("error (%s): %s\n", state.ErrorKind, state.ErrorCause)
	}

	final := ""
	switch {
	case state.Working.Formatted != nil:
		final = state.Working.Formatted.Text
	case state.Working.Draft != nil:
		final = state.Working.Draft.Text
	}
	if final != "" {
		fmt.Println("---")
		fmt.Println(final)
	}
	return nil
}
