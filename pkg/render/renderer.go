package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Renderer turns a form schema into a byte representation (HTML, terminal
// prompts, etc.). Renderers receive the full schema and decide which fields
// to show from RenderOptions.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, fields []schema.Field, options RenderOptions) ([]byte, error)
}
