package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/asktoapi/engine/llm/embedding"
	"github.com/asktoapi/engine/openapi"
)

// Indexer projects catalog operations into embeddable documents and upserts
// them into the vector store. It runs once at startup; store failures
// propagate so the service fails to start rather than serve an unindexed
// catalog.
type Indexer struct {
	store    VectorStore
	embedder embedding.Provider
	logger   *zap.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(store VectorStore, embedder embedding.Provider, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{store: store, embedder: embedder, logger: logger.With(zap.String("component", "indexer"))}
}

// Index embeds and upserts one document per operation.
func (ix *Indexer) Index(ctx context.Context, operations []openapi.OperationDescriptor) error {
	if len(operations) == 0 {
		ix.logger.Warn("no operations to index")
		return nil
	}

	docs := make([]Document, 0, len(operations))
	contents := make([]string, 0, len(operations))
	for _, op := range operations {
		doc := ToDocument(op)
		docs = append(docs, doc)
		contents = append(contents, doc.Content)
	}

	embeddings, err := ix.embedder.EmbedDocuments(ctx, contents)
	if err != nil {
		return fmt.Errorf("embed operations: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: got=%d want=%d", len(embeddings), len(docs))
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}

	if err := ix.store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("add documents to vector store: %w", err)
	}

	ix.logger.Info("indexed operations into vector store", zap.Int("count", len(docs)))
	return nil
}

// Metadata keys carried on every indexed document.
const (
	MetaOperationID = "operationId"
	MetaHTTPMethod  = "httpMethod"
	MetaPath        = "path"
	MetaSourceName  = "sourceName"
	MetaTags        = "tags"
)

// ToDocument builds the embeddable projection of an operation. The document
// ID is the operation ID, so re-indexing upserts instead of duplicating.
func ToDocument(op openapi.OperationDescriptor) Document {
	metadata := map[string]any{
		MetaOperationID: op.ID,
		MetaHTTPMethod:  op.HTTPMethod,
		MetaPath:        op.Path,
	}
	if op.SourceName != "" {
		metadata[MetaSourceName] = op.SourceName
	}
	if len(op.Tags) > 0 {
		metadata[MetaTags] = strings.Join(op.Tags, ", ")
	}

	return Document{
		ID:       op.ID,
		Content:  buildContent(op),
		Metadata: metadata,
	}
}

func buildContent(op openapi.OperationDescriptor) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("[%s] %s", op.HTTPMethod, op.Path))

	if op.Summary != "" {
		lines = append(lines, "Summary: "+op.Summary)
	}
	if op.Description != "" {
		lines = append(lines, "Description: "+op.Description)
	}
	if len(op.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(op.Tags, ", "))
	}

	if len(op.Parameters) > 0 {
		lines = append(lines, "Parameters:")
		for _, p := range op.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			parts := []string{fmt.Sprintf("  - %s (%s) [%s]", p.Name, p.Location, req)}
			if p.Type != "" {
				parts = append(parts, "type="+p.Type)
			}
			if p.Description != "" {
				parts = append(parts, "- "+p.Description)
			}
			if p.Example != "" {
				parts = append(parts, fmt.Sprintf("(example: %s)", p.Example))
			}
			lines = append(lines, strings.Join(parts, " "))
		}
	}

	if op.HasRequestBody {
		bodyLine := "Request Body: present"
		if op.RequestBodySummary != "" {
			bodyLine += " - " + op.RequestBodySummary
		}
		lines = append(lines, bodyLine)
	}

	if op.SourceName != "" {
		lines = append(lines, "Source: "+op.SourceName)
	}

	return strings.Join(lines, "\n")
}
