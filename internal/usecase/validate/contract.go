package validate

import "github.com/kailas-cloud/restql/internal/domain/schema"

// FieldResolver looks dotted field paths up against a shape.
type FieldResolver interface {
	Field(shape schema.Shape, dotted string, maxDepth int) (schema.Path, error)
}
