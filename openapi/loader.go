package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// supportedMethods lists the HTTP methods extracted from path items,
// in the order operations are emitted per path.
var supportedMethods = []string{"get", "post", "put", "delete", "patch"}

// LoadDir loads every *.json OpenAPI document under dir, in lexicographic
// filename order, and returns the flat operation sequence across all files.
//
// A file that cannot be read or parsed is logged and skipped; a document
// without a "paths" object contributes zero operations. The loader only
// looks at the fields it needs and ignores everything else, so partial or
// otherwise invalid documents still yield their extractable operations.
func LoadDir(dir string, logger *zap.Logger) ([]OperationDescriptor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("openapi: reading spec dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var operations []OperationDescriptor
	for _, name := range names {
		ops, err := loadFile(filepath.Join(dir, name), name)
		if err != nil {
			logger.Error("skipping spec file",
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		operations = append(operations, ops...)
	}

	logger.Info("loaded openapi operations",
		zap.Int("count", len(operations)),
		zap.Int("files", len(names)),
		zap.String("dir", dir))
	return operations, nil
}

func loadFile(path, name string) ([]OperationDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Path iteration order follows the document's own key order.
	pathOrder, err := objectKeyOrder(data, "paths")
	if err != nil {
		pathOrder = nil
	}
	if pathOrder == nil {
		pathOrder = make([]string, 0, len(spec.Paths))
		for p := range spec.Paths {
			pathOrder = append(pathOrder, p)
		}
		sort.Strings(pathOrder)
	}

	var ops []OperationDescriptor
	for _, pathTemplate := range pathOrder {
		raw, ok := spec.Paths[pathTemplate]
		if !ok {
			continue
		}
		var pathItem map[string]any
		if err := json.Unmarshal(raw, &pathItem); err != nil {
			continue
		}

		pathParams := rawParameters(pathItem["parameters"])

		for _, method := range supportedMethods {
			op, ok := pathItem[method].(map[string]any)
			if !ok {
				continue
			}
			ops = append(ops, buildOperation(pathTemplate, method, op, pathParams, name))
		}
	}
	return ops, nil
}

func buildOperation(path, method string, op map[string]any, pathParams []map[string]any, sourceName string) OperationDescriptor {
	id, _ := op["operationId"].(string)
	if id == "" {
		id = strings.ToUpper(method) + " " + path
	}

	params := make([]ParameterDescriptor, 0, len(pathParams))
	for _, p := range pathParams {
		params = append(params, buildParameter(p))
	}
	for _, p := range rawParameters(op["parameters"]) {
		params = append(params, buildParameter(p))
	}
	if len(params) == 0 {
		params = nil
	}

	desc := OperationDescriptor{
		ID:         id,
		HTTPMethod: strings.ToUpper(method),
		Path:       path,
		Parameters: params,
		SourceName: sourceName,
	}
	desc.Summary, _ = op["summary"].(string)
	desc.Description, _ = op["description"].(string)
	desc.Tags = stringSlice(op["tags"])

	if body, ok := op["requestBody"]; ok {
		desc.HasRequestBody = true
		if m, ok := body.(map[string]any); ok {
			desc.RequestBodySummary, _ = m["description"].(string)
		}
	}
	return desc
}

func buildParameter(p map[string]any) ParameterDescriptor {
	d := ParameterDescriptor{}
	d.Name, _ = p["name"].(string)
	in, _ := p["in"].(string)
	d.Location = ParseParameterLocation(strings.ToLower(in))
	d.Required, _ = p["required"].(bool)
	d.Description, _ = p["description"].(string)

	if schema, ok := p["schema"].(map[string]any); ok {
		t, _ := schema["type"].(string)
		f, _ := schema["format"].(string)
		switch {
		case t != "" && f != "":
			d.Type = fmt.Sprintf("%s(%s)", t, f)
		case t != "":
			d.Type = t
		}
	}

	// Stringify unconditionally so 0, false and "" survive.
	if example, ok := p["example"]; ok && example != nil {
		d.Example = stringifyExample(example)
	}
	return d
}

// stringifyExample renders a raw example value the way the source wrote it;
// json.Unmarshal turns all numbers into float64, so integral values are
// printed without a decimal point.
func stringifyExample(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		return fmt.Sprintf("%t", x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}

func rawParameters(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// objectKeyOrder returns the member keys of the top-level object named field,
// in document order. encoding/json maps do not preserve key order, so the
// loader re-tokenizes the raw document for ordering only.
func objectKeyOrder(data []byte, field string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	// Find the field at depth 1 of the top-level object.
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		if key != field {
			// Skip the value entirely.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		openTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := openTok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("%s is not an object", field)
		}

		// A repeated member key is listed once; the map value already
		// reflects the last occurrence, so emitting it again would
		// duplicate the path's operations.
		var keys []string
		seen := make(map[string]bool)
		for dec.More() {
			memberTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			member, _ := memberTok.(string)
			if !seen[member] {
				seen[member] = true
				keys = append(keys, member)
			}

			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		return keys, nil
	}
	return nil, nil
}
