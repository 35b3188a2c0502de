// Package openapi turns a directory of OpenAPI 3.x JSON documents into a
// normalized, immutable catalog of HTTP operations.
//
// The loader deliberately avoids full OpenAPI validation: it walks the
// generic JSON tree and extracts only paths, methods, parameters and
// request-body presence, skipping files it cannot parse. The resulting
// OperationDescriptor records are what the rest of the service indexes,
// retrieves and renders.
package openapi
