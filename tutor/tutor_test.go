package tutor

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-org/stepwise/engine"
	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/parser"
)

func newQuiet(opts ...Option) *Tutor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestAskSolve(t *testing.T) {
	resp, err := newQuiet().Ask(context.Background(), "solve 2x^2 + 3x - 5 = 0", intent.ModalityTyped)
	require.NoError(t, err)

	assert.Equal(t, intent.OpSolve, resp.Request.Op)
	require.Len(t, resp.Result.Roots, 2)
	assert.Equal(t, "1", resp.Result.Roots[0].Text)
	assert.Equal(t, "-5/2", resp.Result.Roots[1].Text)
	assert.NotEmpty(t, resp.Result.Steps)

	assert.NotEmpty(t, resp.Event.ID)
	assert.True(t, resp.Event.Success)
	assert.Equal(t, "quadratic-equations", resp.Event.Concept)
}

func TestAskVoiceModality(t *testing.T) {
	resp, err := newQuiet().Ask(context.Background(), "solve x squared minus four equals zero", intent.ModalityVoice)
	require.NoError(t, err)
	assert.Equal(t, intent.ModalityVoice, resp.Request.Modality)
	assert.Len(t, resp.Result.Roots, 2)
}

func TestAskTypedErrors(t *testing.T) {
	tut := newQuiet()

	t.Run("parse error", func(t *testing.T) {
		_, err := tut.Ask(context.Background(), "solve x +", intent.ModalityTyped)
		var perr *parser.ParseError
		require.ErrorAs(t, err, &perr)
	})
	t.Run("unrecognized intent", func(t *testing.T) {
		_, err := tut.Ask(context.Background(), "x^2 - 4", intent.ModalityTyped)
		var uerr *intent.UnrecognizedIntentError
		require.ErrorAs(t, err, &uerr)
	})
	t.Run("unsupported form", func(t *testing.T) {
		_, err := tut.Ask(context.Background(), "solve sin(x) = 0", intent.ModalityTyped)
		var ferr *engine.UnsupportedFormError
		require.ErrorAs(t, err, &ferr)
	})
}

func TestAskEngineOptions(t *testing.T) {
	tut := newQuiet(WithEngineOptions(engine.WithGraphSamples(25)))
	resp, err := tut.Ask(context.Background(), "graph x^2", intent.ModalityTyped)
	require.NoError(t, err)
	require.NotNil(t, resp.Result.Chart)
	assert.Len(t, resp.Result.Chart.Series[0].Data, 25)
}

func TestAskConcurrent(t *testing.T) {
	tut := newQuiet()
	inputs := []string{
		"solve x^2 - 4 = 0",
		"factor x^2 + 5x + 6",
		"derivative of x^3",
		"simplify 2x + 3x",
	}
	done := make(chan error, len(inputs)*4)
	for i := 0; i < 4; i++ {
		for _, in := range inputs {
			go func(text string) {
				_, err := tut.Ask(context.Background(), text, intent.ModalityTyped)
				done <- err
			}(in)
		}
	}
	for i := 0; i < len(inputs)*4; i++ {
		assert.NoError(t, <-done)
	}
}
