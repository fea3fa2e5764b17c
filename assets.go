// Package careerpath exposes the embedded page bundle so applications can
// mount or extend it without importing the renderer packages.
package careerpath

import (
	"io/fs"

	careerhtml "github.com/goliatone/go-careerpath/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or override single pages.
func EmbeddedTemplates() fs.FS {
	return careerhtml.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet bundle served under /assets.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(careerpath.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return careerhtml.AssetsFS()
}
