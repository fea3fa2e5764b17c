package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
	"github.com/goliatone/go-careerpath/pkg/predict"
	"github.com/goliatone/go-careerpath/pkg/result"
)

const (
	ActionNext     = "Next"
	ActionPrevious = "Previous"
	ActionSubmit   = "Predict Career Path"
	ActionRestart  = "Start over"

	selectPrompt = "-- Select --"
)

// Runner walks the form pages in a terminal, driving the same state machine
// the web front-end uses, and submits the record once the last page passes.
type Runner struct {
	machine         *form.Machine
	predictor       predict.Predictor
	driver          PromptDriver
	out             io.Writer
	logger          *zap.Logger
	theme           Theme
	validateOnInput bool
}

// New constructs a Runner. The survey driver is used unless one is supplied.
func New(machine *form.Machine, predictor predict.Predictor, options ...Option) (*Runner, error) {
	if machine == nil {
		return nil, errors.New("tui: form machine is required")
	}
	if predictor == nil {
		return nil, errors.New("tui: predictor is required")
	}
	r := &Runner{
		machine:   machine,
		predictor: predictor,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

// Run prompts page by page until a prediction is returned. A failed
// submission keeps the answers and offers a retry.
func (r *Runner) Run(ctx context.Context) (result.View, error) {
	s := form.NewSession()
	for {
		if err := ctx.Err(); err != nil {
			return result.View{}, err
		}

		var err error
		if s, err = r.fillPage(ctx, s); err != nil {
			return result.View{}, err
		}

		action, err := r.chooseAction(ctx, s)
		if err != nil {
			return result.View{}, err
		}

		switch action {
		case ActionPrevious:
			s, _, err = r.machine.Apply(s, form.Previous())
		case ActionRestart:
			s, _, err = r.machine.Apply(s, form.Reset())
		case ActionNext:
			var outcome form.Outcome
			s, outcome, err = r.machine.Apply(s, form.Next())
			if err == nil && outcome.Kind == form.OutcomeBlocked {
				err = r.reportFailing(ctx, s, outcome.Failing)
			}
		case ActionSubmit:
			var outcome form.Outcome
			s, outcome, err = r.machine.Apply(s, form.Submit())
			if err != nil {
				break
			}
			if outcome.Kind == form.OutcomeBlocked {
				err = r.reportFailing(ctx, s, outcome.Failing)
				break
			}
			view, done, submitErr := r.submit(ctx, outcome.Payload)
			if done || submitErr != nil {
				return view, submitErr
			}
		}
		if err != nil {
			return result.View{}, err
		}
	}
}

// fillPage prompts for the fields of the current page. After a blocked
// transition only the failing fields are asked again.
func (r *Runner) fillPage(ctx context.Context, s form.Session) (form.Session, error) {
	partition := r.machine.Partition()
	page, _ := partition.Page(s.Page)
	if len(s.Errors) == 0 {
		if err := r.info(ctx, fmt.Sprintf("Page %d of %d: %s", s.Page+1, partition.Len(), page.Title)); err != nil {
			return s, err
		}
	}

	retry := s.Errors.Clone()
	for _, field := range partition.PageFields(s.Page) {
		if _, failing := retry[field.Name]; len(retry) > 0 && !failing {
			continue
		}
		value, err := r.promptField(ctx, field, s.Value(field.Name))
		if err != nil {
			return s, err
		}
		if s, _, err = r.machine.Apply(s, form.Edit(field.Name, value)); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (r *Runner) promptField(ctx context.Context, field model.Field, current string) (string, error) {
	message := field.Label
	if field.Placeholder != "" {
		message += " (" + field.Placeholder + ")"
	}

	if field.Kind == model.FieldKindSelect {
		options := append([]string(nil), field.Options...)
		if !field.Required {
			options = append([]string{selectPrompt}, options...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, current),
			Help:         field.Description,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) || options[idx] == selectPrompt {
			return "", nil
		}
		return options[idx], nil
	}

	cfg := InputConfig{
		Message: message,
		Default: current,
		Help:    field.Description,
	}
	if r.validateOnInput {
		name := field.Name
		cfg.Validator = func(value string) error {
			if msg := r.machine.FieldError(name, value); msg != "" {
				return errors.New(msg)
			}
			return nil
		}
	}
	return r.driver.Input(ctx, cfg)
}

func (r *Runner) chooseAction(ctx context.Context, s form.Session) (string, error) {
	options := []string{ActionNext}
	if s.Page == r.machine.Partition().Last() {
		options = []string{ActionSubmit}
	}
	if s.Page > 0 {
		options = append(options, ActionPrevious)
	}
	options = append(options, ActionRestart)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Continue", Options: options})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("tui: unknown action index %d", idx)
	}
	return options[idx], nil
}

func (r *Runner) submit(ctx context.Context, payload map[string]string) (result.View, bool, error) {
	prediction, err := r.predictor.Predict(ctx, payload)
	if err == nil {
		view := result.Present(prediction, true)
		return view, true, r.info(ctx, "Your Career Path Prediction: "+view.Prediction)
	}

	r.logger.Warn("prediction failed", zap.Error(err))
	if infoErr := r.errorf(ctx, predict.UserMessage(err)); infoErr != nil {
		return result.View{}, false, infoErr
	}
	retry, confirmErr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
	if confirmErr != nil {
		return result.View{}, false, confirmErr
	}
	if !retry {
		return result.View{}, false, fmt.Errorf("%w: %v", ErrGaveUp, err)
	}
	return result.View{}, false, nil
}

func (r *Runner) reportFailing(ctx context.Context, s form.Session, failing []string) error {
	registry := r.machine.Registry()
	for _, name := range failing {
		label := name
		if field, ok := registry.Field(name); ok {
			label = field.Label
		}
		if err := r.errorf(ctx, label+": "+s.Error(name)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) errorf(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}
