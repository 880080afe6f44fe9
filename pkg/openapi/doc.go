// Package openapi builds model schemas from the component schemas of an
// OpenAPI 3 document so FieldSets can be generated for API payloads without
// declaring Go structs. Documents are fetched from disk, an fs.FS or HTTP.
package openapi
