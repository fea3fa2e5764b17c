package render

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONRenderer serialises the View itself. It backs the JSON front-end API.
type JSONRenderer struct{}

// NewJSONRenderer returns the JSON renderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (*JSONRenderer) Name() string { return "json" }

func (*JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

func (*JSONRenderer) Render(_ context.Context, view View) ([]byte, error) {
	out, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("render: encode json view: %w", err)
	}
	return append(out, '\n'), nil
}
