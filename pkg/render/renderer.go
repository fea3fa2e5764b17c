package render

import (
	"context"
)

// Renderer turns a page View into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
