package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query          string `json:"query" jsonschema:"the question to answer from the indexed pages"`
	Collection     string `json:"collection,omitempty" jsonschema:"collection to search (default \"default\")"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"number of pages to retrieve, 1 to 5 (default 1)"`
	IncludeContext *bool  `json:"include_context,omitempty" jsonschema:"attach secondary pages to the prompt (default true)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer           string                   `json:"answer"`
	SourceDocument   string                   `json:"source_document"`
	SimilarityScore  float64                  `json:"similarity_score"`
	Collection       string                   `json:"collection"`
	FromCache        bool                     `json:"from_cache"`
	ContextDocuments []domain.ContextDocument `json:"context_documents,omitempty"`
}

// ListCollectionsInput is the (empty) input schema for the list_collections tool.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for the list_collections tool.
type ListCollectionsOutput struct {
	Collections []domain.CollectionSummary `json:"collections"`
	Count       int                        `json:"count"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question using the most relevant indexed page images",
	}, s.handleQuery)

	if s.ports.Collections != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_collections",
			Description: "List indexed document collections",
		}, s.handleListCollections)
	}

	if s.ports.Stats != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Show query counters, cache hit rate and provider availability",
		}, s.handleStats)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	q := domain.NewQuery(input.Query)
	if input.Collection != "" {
		q.Collection = input.Collection
	}
	if input.TopK > 0 {
		q.TopK = input.TopK
	}
	if input.IncludeContext != nil {
		q.IncludeContext = *input.IncludeContext
	}

	result, err := s.ports.RAG.Query(ctx, q)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		Answer:           result.Answer,
		SourceDocument:   result.SourceDocument,
		SimilarityScore:  result.SimilarityScore,
		Collection:       result.Collection,
		FromCache:        result.FromCache,
		ContextDocuments: result.ContextDocuments,
	}, nil
}

// handleListCollections handles the list_collections tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	summaries := s.ports.Collections.List(ctx)
	if summaries == nil {
		summaries = []domain.CollectionSummary{}
	}
	return nil, ListCollectionsOutput{Collections: summaries, Count: len(summaries)}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, domain.Stats, error) {
	return nil, s.ports.Stats.Stats(ctx), nil
}
