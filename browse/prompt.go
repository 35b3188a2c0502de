package browse

import (
	"fmt"
	"strings"

	"github.com/asktoapi/engine/openapi"
)

// NoOperationsSentinel is the context placeholder when retrieval returned
// nothing. The model is instructed to say so rather than invent endpoints.
const NoOperationsSentinel = "NO_OPERATIONS_AVAILABLE"

// SystemPrompt frames the model as an API assistant that may only answer
// from the provided context.
const SystemPrompt = "You are an expert API assistant for a financial data platform.\n" +
	"Your job is to help the user understand WHICH HTTP API endpoint to call, " +
	"and HOW to call it (method, path, path params, query params, and request body if any).\n" +
	"You MUST only answer using the API operations listed in the context.\n" +
	"If none of the operations are a good match, say that clearly."

const userPromptTemplate = "User question:\n%q\n\n" +
	"Here are the candidate API operations:\n\n%s\n\n" +
	"Based on the user's question and the operations above, " +
	"explain in clear English which endpoint(s) the user should call.\n" +
	"For each recommended endpoint, include:\n" +
	"  - HTTP method and full path\n" +
	"  - Path parameters with example values\n" +
	"  - Query parameters with example values\n" +
	"  - Whether a JSON request body is required (and a rough JSON example if applicable)\n" +
	"  - A short explanation of what the endpoint returns\n\n" +
	"Format your response as clear bullet points and short paragraphs. " +
	"Do NOT invent endpoints that are not listed above."

// BuildUserPrompt renders the human turn for a query and formatted context.
func BuildUserPrompt(query, context string) string {
	return fmt.Sprintf(userPromptTemplate, query, context)
}

// FormatOperations renders operations as numbered context blocks separated by
// blank lines. An empty slice yields NoOperationsSentinel.
func FormatOperations(operations []openapi.OperationDescriptor) string {
	if len(operations) == 0 {
		return NoOperationsSentinel
	}

	blocks := make([]string, 0, len(operations))
	for i, op := range operations {
		blocks = append(blocks, formatOperation(i+1, op))
	}
	return strings.Join(blocks, "\n\n")
}

func formatOperation(index int, op openapi.OperationDescriptor) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%d) ID: %s", index, op.ID))
	lines = append(lines, "   Method: "+op.HTTPMethod)
	lines = append(lines, "   Path: "+op.Path)

	if op.Summary != "" {
		lines = append(lines, "   Summary: "+op.Summary)
	}
	if op.Description != "" {
		lines = append(lines, "   Description: "+op.Description)
	}
	if len(op.Tags) > 0 {
		lines = append(lines, "   Tags: "+strings.Join(op.Tags, ", "))
	}

	var pathParams, queryParams []openapi.ParameterDescriptor
	for _, p := range op.Parameters {
		switch p.Location {
		case openapi.LocationPath:
			pathParams = append(pathParams, p)
		case openapi.LocationQuery:
			queryParams = append(queryParams, p)
		}
	}

	if len(pathParams) > 0 {
		lines = append(lines, "   Path parameters:")
		for _, p := range pathParams {
			lines = append(lines, formatParameter(p))
		}
	}
	if len(queryParams) > 0 {
		lines = append(lines, "   Query parameters:")
		for _, p := range queryParams {
			lines = append(lines, formatParameter(p))
		}
	}

	if op.HasRequestBody {
		body := "   Request body: YES"
		if op.RequestBodySummary != "" {
			body += " - " + op.RequestBodySummary
		}
		lines = append(lines, body)
	} else {
		lines = append(lines, "   Request body: NO")
	}

	if op.SourceName != "" {
		lines = append(lines, "   Source: "+op.SourceName)
	}

	return strings.Join(lines, "\n")
}

func formatParameter(p openapi.ParameterDescriptor) string {
	req := "optional"
	if p.Required {
		req = "required"
	}
	line := fmt.Sprintf("      - %s [%s]", p.Name, req)
	if p.Type != "" {
		line += fmt.Sprintf(" (type: %s)", p.Type)
	}
	if p.Description != "" {
		line += " - " + p.Description
	}
	if p.Example != "" {
		line += fmt.Sprintf(" (example: %s)", p.Example)
	}
	return line
}
