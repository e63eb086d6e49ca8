// Package tutor wires the full pipeline: raw phrase in, derivation out.
// Normalizer, classifier, and solver are built once and shared; a Tutor is
// safe for concurrent use because every table behind it is read-only.
package tutor

import (
	"context"
	"log/slog"

	"github.com/stepwise-org/stepwise/engine"
	"github.com/stepwise-org/stepwise/intent"
)

// Response bundles everything one request produced.
type Response struct {
	Request *intent.Request `json:"request"`
	Result  *engine.Result  `json:"result"`
	Event   engine.Event    `json:"event"`
}

// Tutor is the assembled pipeline.
type Tutor struct {
	classifier *intent.Classifier
	logger     *slog.Logger
	engineOpts []engine.Option
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithClassifier replaces the default classifier, e.g. to load a custom
// vocabulary.
func WithClassifier(c *intent.Classifier) Option {
	return func(t *Tutor) {
		if c != nil {
			t.classifier = c
		}
	}
}

// WithLogger sets the structured logger. slog.Default is used when unset.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tutor) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithEngineOptions appends solver options applied to every request.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(t *Tutor) {
		t.engineOpts = append(t.engineOpts, opts...)
	}
}

// New assembles a Tutor over the embedded tables.
func New(opts ...Option) *Tutor {
	t := &Tutor{
		classifier: intent.Default(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ask runs one phrase through classify and solve. Errors are the typed ones
// from the parser, classifier, and engine; there are no partial results.
func (t *Tutor) Ask(ctx context.Context, text string, modality intent.Modality) (*Response, error) {
	req, err := t.classifier.Classify(text)
	if err != nil {
		t.logger.Warn("request rejected", "input", text, "error", err)
		return nil, err
	}
	if modality != "" {
		req.Modality = modality
	}

	rec := engine.NewStepRecorder()
	opts := append(append([]engine.Option{}, t.engineOpts...), engine.WithRecorder(rec))
	res, err := engine.Solve(ctx, req, opts...)
	if err != nil {
		t.logger.Warn("solve failed", "op", req.Op, "input", req.Raw, "error", err)
		return nil, err
	}

	t.logger.Info("request solved",
		"op", req.Op,
		"modality", req.Modality,
		"steps", len(res.Steps),
		"exact", res.Exact,
	)
	return &Response{
		Request: req,
		Result:  res,
		Event:   engine.NewEvent(req.Op, res),
	}, nil
}
