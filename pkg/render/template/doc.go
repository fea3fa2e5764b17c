// Package template defines the renderer-agnostic template contract used by
// the page renderers.
package template
