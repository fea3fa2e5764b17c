package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-careerpath/pkg/model"
)

func TestDefaultRegistry_CatalogShape(t *testing.T) {
	reg := model.DefaultRegistry()

	if got := reg.Len(); got != 21 {
		t.Fatalf("expected 21 fields, got %d", got)
	}

	for _, field := range reg.Fields() {
		if !field.Required {
			t.Errorf("field %q should be required", field.Name)
		}
		if field.Label == "" {
			t.Errorf("field %q has no label", field.Name)
		}
	}

	wantKinds := map[string]model.FieldKind{
		"studentId":              model.FieldKindText,
		"gender":                 model.FieldKindSelect,
		"age":                    model.FieldKindNumber,
		"gpa":                    model.FieldKindNumber,
		"python":                 model.FieldKindSelect,
		"expectedGraduationYear": model.FieldKindNumber,
		"workPreference":         model.FieldKindSelect,
		"leadershipRole":         model.FieldKindText,
	}
	for name, want := range wantKinds {
		field, ok := reg.Field(name)
		if !ok {
			t.Fatalf("field %q missing", name)
		}
		if field.Kind != want {
			t.Errorf("field %q kind: want %s, got %s", name, want, field.Kind)
		}
	}

	gender, _ := reg.Field("gender")
	if diff := cmp.Diff([]string{"Male", "Female", "Non-binary", "Other"}, gender.Options); diff != "" {
		t.Fatalf("gender options mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_FieldReturnsCopy(t *testing.T) {
	reg := model.DefaultRegistry()

	field, _ := reg.Field("python")
	field.Options[0] = "mutated"

	again, _ := reg.Field("python")
	if again.Options[0] != "Beginner" {
		t.Fatalf("registry leaked internal slice: %v", again.Options)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	cases := []struct {
		name   string
		fields []model.Field
		want   error
	}{
		{name: "empty", want: model.ErrEmptyRegistry},
		{
			name:   "blank name",
			fields: []model.Field{{Name: " ", Kind: model.FieldKindText}},
			want:   model.ErrFieldName,
		},
		{
			name: "duplicate",
			fields: []model.Field{
				{Name: "a", Kind: model.FieldKindText},
				{Name: "a", Kind: model.FieldKindNumber},
			},
			want: model.ErrDuplicateField,
		},
		{
			name:   "select without options",
			fields: []model.Field{{Name: "a", Kind: model.FieldKindSelect}},
			want:   model.ErrSelectOptions,
		},
		{
			name:   "unknown kind",
			fields: []model.Field{{Name: "a", Kind: "date"}},
			want:   model.ErrUnknownKind,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.NewRegistry(tc.fields...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestField_Rule(t *testing.T) {
	gpa, _ := model.DefaultRegistry().Field("gpa")

	upper, ok := gpa.Rule(model.ValidationRuleMax)
	if !ok || upper.Params["value"] != "10" {
		t.Fatalf("expected max=10 rule, got %+v (ok=%v)", upper, ok)
	}
	if _, ok := gpa.Rule("pattern"); ok {
		t.Fatalf("unexpected pattern rule")
	}
}
