package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/upb/genos-ai/app"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/rag"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Retrieve the RAG context a prompt would receive",
	RunE: func(cmd *cobra.Command, args []string) error {
		org, _ := cmd.Flags().GetString("org")
		query, _ := cmd.Flags().GetString("query")
		topK, _ := cmd.Flags().GetInt("top-k")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		sources, _ := cmd.Flags().GetStringSlice("source")
		asJSON, _ := cmd.Flags().GetBool("json")

		orgID, err := uuid.Parse(org)
		if err != nil {
			return fmt.Errorf("--org must be a UUID: %w", err)
		}
		if strings.TrimSpace(query) == "" {
			return errors.New("--query is required")
		}

		return withDependencies(cmd.Context(), func(ctx context.Context, deps *app.Dependencies) error {
			if deps.Retriever == nil {
				return errors.New("retrieval unavailable: set WATSONX_API_KEY and WATSONX_PROJECT_ID and keep RAG_ENABLED on")
			}
			rc := deps.Retriever.Retrieve(ctx, orgID, query, rag.Options{
				TopK:                topK,
				SimilarityThreshold: rag.Threshold(threshold),
				SourceTypes:         sources,
			})
			return printContext(cmd.OutOrStdout(), rc, asJSON)
		})
	},
}

func printContext(w io.Writer, rc models.RAGContext, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rc)
	}

	if len(rc.Documents) == 0 {
		_, err := fmt.Fprintln(w, "no documents above the similarity threshold")
		return err
	}

	for _, d := range rc.Documents {
		fmt.Fprintf(w, "%.3f  %-12s %s\n", d.Similarity, d.Source, d.ID)
	}
	_, err := fmt.Fprintf(w, "\n~%d tokens\n\n%s\n", rc.TokensEstimate, rc.ContextText)
	return err
}

func init() {
	searchCmd.Flags().String("org", "", "organization id (required)")
	searchCmd.Flags().String("query", "", "text to search for (required)")
	searchCmd.Flags().Int("top-k", rag.DefaultTopK, "maximum number of documents")
	searchCmd.Flags().Float64("threshold", rag.DefaultSimilarityThreshold, "minimum similarity")
	searchCmd.Flags().StringSlice("source", rag.DefaultSourceTypes, "source types to search")
	searchCmd.Flags().Bool("json", false, "print the context as JSON")
	_ = searchCmd.MarkFlagRequired("org")
	_ = searchCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(searchCmd)
}
