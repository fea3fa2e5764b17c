package careerpath

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedAssetsContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(EmbeddedAssets(), "careerpath.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), "--brand") {
		t.Fatalf("expected stylesheet to use theme variables")
	}
}

func TestEmbeddedTemplatesContainsPages(t *testing.T) {
	for _, name := range []string{"layout.tpl", "home.tpl", "form.tpl", "result.tpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), "templates/"+name); err != nil {
			t.Fatalf("expected template %s: %v", name, err)
		}
	}
}
