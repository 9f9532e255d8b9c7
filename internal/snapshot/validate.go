package snapshot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jeanpaul/tonepad/internal/history"
)

const schemaTemplate = `{
  "type": "object",
  "required": ["current", "past", "future"],
  "properties": {
    "version":    {"type": "integer", "minimum": 1},
    "id":         {"type": "string"},
    "created_at": {"type": "string", "format": "date-time"},
    "current":    {"type": "string"},
    "past":       {"type": "array", "items": {"type": "string"}, "maxItems": %[1]d},
    "future":     {"type": "array", "items": {"type": "string"}, "maxItems": %[1]d}
  }
}`

// compiled schemas keyed by stack bound
var schemas sync.Map

func schemaFor(maxDepth int) (*gojsonschema.Schema, error) {
	if val, ok := schemas.Load(maxDepth); ok {
		return val.(*gojsonschema.Schema), nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fmt.Sprintf(schemaTemplate, maxDepth)))
	if err != nil {
		return nil, err
	}
	schemas.Store(maxDepth, schema)
	return schema, nil
}

// Validate checks a snapshot document before it is decoded.
func Validate(doc []byte, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = history.DefaultMaxDepth
	}
	schema, err := schemaFor(maxDepth)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("not a snapshot: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("invalid snapshot:\n- %s", dumpErrors(errs))
}

// dumpErrors keeps the first three messages.
func dumpErrors(errs []string) string {
	var more string
	if len(errs) > 3 {
		more = fmt.Sprintf("\n... and %d more", len(errs)-3)
		errs = errs[:3]
	}
	return strings.Join(errs, "\n- ") + more
}
