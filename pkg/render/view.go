package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
	"github.com/goliatone/go-careerpath/pkg/result"
)

// Kind identifies which page a View describes.
type Kind string

const (
	KindHome   Kind = "home"
	KindForm   Kind = "form"
	KindResult Kind = "result"
)

// View is the renderer input. Exactly one of Form or Result is set for the
// matching Kind; home pages carry neither.
type View struct {
	Kind   Kind          `json:"kind"`
	Title  string        `json:"title"`
	Form   *FormView     `json:"form,omitempty"`
	Result *result.View  `json:"result,omitempty"`
	Hidden []HiddenField `json:"hidden,omitempty"`
}

// FormView is one page of the multi-step form as shown to the user.
type FormView struct {
	PageIndex  int         `json:"pageIndex"`
	PageNumber int         `json:"pageNumber"`
	Pages      int         `json:"pages"`
	Title      string      `json:"title"`
	Heading    string      `json:"heading"`
	Progress   float64     `json:"progress"`
	First      bool        `json:"first"`
	Last       bool        `json:"last"`
	Fields     []FieldView `json:"fields"`
	Messages   []string    `json:"messages,omitempty"`
}

// FieldView is a single control with its current value and inline error.
type FieldView struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	Value       string       `json:"value"`
	Error       string       `json:"error,omitempty"`
	Options     []OptionView `json:"options,omitempty"`
	Min         string       `json:"min,omitempty"`
	Max         string       `json:"max,omitempty"`
	Step        string       `json:"step,omitempty"`
}

// OptionView is a select choice.
type OptionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// HomeView describes the landing page.
func HomeView() View {
	return View{Kind: KindHome, Title: "Career Path Prediction"}
}

// ResultView describes the result page.
func ResultView(v result.View) View {
	return View{Kind: KindResult, Title: "Your Career Path Prediction", Result: &v}
}

// FormPage builds the view of the session's current page. notice is the last
// submission failure message and is only shown on the last page.
func FormPage(partition *model.Partition, s form.Session, notice string) (View, error) {
	if partition == nil {
		return View{}, fmt.Errorf("render: partition is required")
	}
	page, ok := partition.Page(s.Page)
	if !ok {
		return View{}, fmt.Errorf("render: page %d out of range", s.Page)
	}

	last := s.Page == partition.Last()
	if !last {
		notice = ""
	}
	mapping := MapSessionErrors(partition, s, notice)

	fv := FormView{
		PageIndex:  s.Page,
		PageNumber: s.Page + 1,
		Pages:      partition.Len(),
		Title:      page.Title,
		Heading:    fmt.Sprintf("Page %d of %d: %s", s.Page+1, partition.Len(), page.Title),
		Progress:   s.Progress(partition.Len()),
		First:      s.Page == 0,
		Last:       last,
		Messages:   mapping.Form,
	}
	for _, field := range partition.PageFields(s.Page) {
		fv.Fields = append(fv.Fields, fieldView(field, s.Value(field.Name), mapping.Fields[field.Name]))
	}

	return View{
		Kind:   KindForm,
		Title:  "Career Path Prediction",
		Form:   &fv,
		Hidden: []HiddenField{PageField(s.Page)},
	}, nil
}

func fieldView(field model.Field, value, message string) FieldView {
	fv := FieldView{
		Name:        field.Name,
		Kind:        string(field.Kind),
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Description: field.Description,
		Required:    field.Required,
		Value:       value,
		Error:       message,
	}
	for _, option := range field.Options {
		fv.Options = append(fv.Options, OptionView{Value: option, Selected: option == value})
	}
	if rule, ok := field.Rule(model.ValidationRuleMin); ok {
		fv.Min = strings.TrimSpace(rule.Params["value"])
	}
	if rule, ok := field.Rule(model.ValidationRuleMax); ok {
		fv.Max = strings.TrimSpace(rule.Params["value"])
	}
	if rule, ok := field.Rule(model.ValidationRuleStep); ok {
		fv.Step = strings.TrimSpace(rule.Params["value"])
	}
	return fv
}
