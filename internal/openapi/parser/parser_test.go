package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const document = `openapi: 3.0.3
info:
  title: Sample
  version: 1.0.0
paths:
  /echo:
    post:
      operationId: echo
      summary: Echo a message
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [message]
              properties:
                message:
                  type: string
                  description: Text to echo
                tone:
                  type: string
                  enum: [calm, loud]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  message:
                    type: string
        "204":
          description: empty
  /ping:
    get:
      responses:
        "200":
          description: ok
`

func TestParse_CollectsOperations(t *testing.T) {
	doc, err := New(Options{ResolveReferences: true}).Parse(context.Background(), []byte(document))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	echo, ok := doc.Operation("echo")
	if !ok {
		t.Fatalf("echo operation missing")
	}
	if echo.Method != "POST" || echo.Path != "/echo" || echo.Summary != "Echo a message" {
		t.Fatalf("unexpected operation %+v", echo)
	}
	if echo.MediaType != "application/json" {
		t.Fatalf("unexpected media type %q", echo.MediaType)
	}

	want := []Property{
		{Name: "message", Type: "string", Description: "Text to echo", Required: true},
		{Name: "tone", Type: "string", Enum: []string{"calm", "loud"}},
	}
	if diff := cmp.Diff(want, echo.Properties); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"message", "tone"}, echo.PropertyNames()); diff != "" {
		t.Fatalf("property names mismatch (-want +got):\n%s", diff)
	}
	if _, ok := echo.Responses["200"]; !ok {
		t.Fatalf("expected 200 response schema")
	}
	if _, ok := echo.Responses["204"]; ok {
		t.Fatalf("responses without content must be skipped")
	}

	ping, ok := doc.Operation("get:/ping")
	if !ok {
		t.Fatalf("expected generated id for operation without operationId")
	}
	if ping.Request != nil || len(ping.Properties) != 0 {
		t.Fatalf("expected no request schema for ping, got %+v", ping)
	}
}

func TestParse_Errors(t *testing.T) {
	ctx := context.Background()
	parser := New(Options{})

	if _, err := parser.Parse(ctx, nil); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty payload error, got %v", err)
	}
	if _, err := parser.Parse(ctx, []byte("openapi: [")); err == nil {
		t.Fatalf("expected load error")
	}

	noPaths := "openapi: 3.0.3\ninfo:\n  title: x\n  version: 1.0.0\npaths: {}\n"
	if _, err := parser.Parse(ctx, []byte(noPaths)); err == nil {
		t.Fatalf("expected error for document without paths")
	}
	doc, err := New(Options{AllowPartialDocuments: true}).Parse(ctx, []byte(noPaths))
	if err != nil {
		t.Fatalf("partial document: %v", err)
	}
	if len(doc.Operations) != 0 {
		t.Fatalf("expected no operations, got %d", len(doc.Operations))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := parser.Parse(cancelled, []byte(document)); err == nil {
		t.Fatalf("expected context error")
	}
}
