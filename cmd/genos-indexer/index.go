package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/upb/genos-ai/app"
	"github.com/upb/genos-ai/services/generation"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed an organization's brands and content items",
	Long: `Index embeds the organization's brands (optionally a single one) and up to
the configured number of published or approved content items, replacing any
existing vectors for the same source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, _ := cmd.Flags().GetString("org")
		typ, _ := cmd.Flags().GetString("type")
		brand, _ := cmd.Flags().GetString("brand")

		req, err := buildIndexRequest(org, typ, brand)
		if err != nil {
			return err
		}

		return withDependencies(cmd.Context(), func(ctx context.Context, deps *app.Dependencies) error {
			result, err := deps.Index.Index(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d item(s) (type=%s)\n", result.Indexed, result.Type)
			return nil
		})
	},
}

func buildIndexRequest(org, typ, brand string) (*generation.IndexRequest, error) {
	orgID, err := uuid.Parse(org)
	if err != nil {
		return nil, fmt.Errorf("--org must be a UUID: %w", err)
	}

	indexType := generation.IndexType(typ)
	if !indexType.IsValid() {
		return nil, fmt.Errorf("--type must be brand, content or all, got %q", typ)
	}

	req := &generation.IndexRequest{
		OrgID:     orgID,
		Type:      indexType,
		RequestID: "cli-" + uuid.NewString(),
	}

	if brand != "" {
		brandID, err := uuid.Parse(brand)
		if err != nil {
			return nil, fmt.Errorf("--brand must be a UUID: %w", err)
		}
		req.BrandID = &brandID
	}

	return req, nil
}

func init() {
	indexCmd.Flags().String("org", "", "organization id (required)")
	indexCmd.Flags().String("type", string(generation.IndexTypeAll), "what to index: brand, content or all")
	indexCmd.Flags().String("brand", "", "index a single brand")
	_ = indexCmd.MarkFlagRequired("org")

	rootCmd.AddCommand(indexCmd)
}
