package watsonx

import (
	"context"
	"fmt"
)

// EmbeddingModel is the default watsonx embedding model
const EmbeddingModel = "ibm/granite-embedding-125m-english"

// EmbeddingDimensions is the vector size produced by EmbeddingModel
const EmbeddingDimensions = 768

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	var out embeddingResponse
	if err := c.post(ctx, "/ml/v1/text/embeddings", embeddingRequest{
		ModelID:   c.config.EmbeddingModel,
		Inputs:    texts,
		ProjectID: c.config.ProjectID,
	}, &out); err != nil {
		return nil, err
	}

	if len(out.Results) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, received %d", len(texts), len(out.Results))
	}

	vectors := make([][]float64, len(out.Results))
	for i, r := range out.Results {
		vectors[i] = r.Embedding
	}
	return vectors, nil
}

type embeddingRequest struct {
	ModelID   string   `json:"model_id"`
	Inputs    []string `json:"inputs"`
	ProjectID string   `json:"project_id"`
}

type embeddingResponse struct {
	ModelID string `json:"model_id"`
	Results []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"results"`
	InputTokenCount int `json:"input_token_count"`
}
