package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
)

// ValidProfile returns a record that passes every page of the default
// partition, including typed checks.
func ValidProfile() form.Record {
	return form.Record{
		"studentId":              "CS2023123",
		"name":                   "Priya Sharma",
		"gender":                 "Female",
		"age":                    "21",
		"gpa":                    "8.7",
		"major":                  "Computer Science",
		"concentration":          "Artificial Intelligence",
		"interestedDomain":       "Data Science",
		"projects":               "5",
		"futureCareer":           "Data Scientist",
		"python":                 "Advanced",
		"sql":                    "Intermediate",
		"java":                   "Beginner",
		"programmingLanguages":   "Python, Java, C++",
		"certifications":         "Google Data Analytics",
		"internshipExperience":   "Yes",
		"researchExperience":     "No",
		"expectedGraduationYear": "2025",
		"workPreference":         "Hybrid",
		"hackathonsAttended":     "3",
		"leadershipRole":         "Club President",
	}
}

// PageValues returns the subset of record that belongs to page.
func PageValues(partition *model.Partition, record form.Record, page int) form.Record {
	out := make(form.Record)
	for _, field := range partition.PageFields(page) {
		out[field.Name] = record[field.Name]
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// CollapseWhitespace folds runs of whitespace into single spaces so markup
// assertions ignore template indentation.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}
