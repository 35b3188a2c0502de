package openapi

// ParameterLocation says where an operation parameter is transmitted.
type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

// ParseParameterLocation maps a raw OpenAPI "in" value to a ParameterLocation.
// Unknown or missing values default to query.
func ParseParameterLocation(raw string) ParameterLocation {
	switch raw {
	case "path":
		return LocationPath
	case "query":
		return LocationQuery
	case "header":
		return LocationHeader
	case "cookie":
		return LocationCookie
	default:
		return LocationQuery
	}
}

// ParameterDescriptor describes one input parameter of an operation.
type ParameterDescriptor struct {
	Name        string            `json:"name"`
	Location    ParameterLocation `json:"location"`
	Required    bool              `json:"required"`
	Type        string            `json:"type,omitempty"`        // e.g. "string", "string(date)"
	Description string            `json:"description,omitempty"`
	Example     string            `json:"example,omitempty"` // always stringified from source
}

// OperationDescriptor describes one callable HTTP endpoint.
//
// ID is the source operationId when present, otherwise "<METHOD> <path>".
// Synthesized IDs are not guaranteed unique across spec files; the catalog
// keeps the last occurrence.
type OperationDescriptor struct {
	ID                 string                `json:"id"`
	HTTPMethod         string                `json:"http_method"` // uppercase
	Path               string                `json:"path"`
	Summary            string                `json:"summary,omitempty"`
	Description        string                `json:"description,omitempty"`
	Tags               []string              `json:"tags,omitempty"`
	Parameters         []ParameterDescriptor `json:"parameters,omitempty"`
	HasRequestBody     bool                  `json:"has_request_body"`
	RequestBodySummary string                `json:"request_body_summary,omitempty"`
	SourceName         string                `json:"source_name,omitempty"`
}
