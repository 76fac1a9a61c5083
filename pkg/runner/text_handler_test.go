package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(out)

	require.NoError(t, handler.Output(context.Background(), "s1", domain.Display{Current: "3", Result: "12"}))
	assert.Contains(t, out.String(), " 12 |")
	assert.Contains(t, out.String(), " 3 |")
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(out)
	handler.FeedInput("  12 + 3 =\n", nil)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12 + 3 =", val)
	assert.Equal(t, DefaultPrompt, out.String())
}

func TestTextHandler_Input_FromReader(t *testing.T) {
	handler := NewTextHandler(io.Discard, WithTextHandlerInput(strings.NewReader("1+1\n2")))

	first, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1+1", first)

	second, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", second, "last line without newline is delivered")

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_Input_SanitizationRetry(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(out)
	handler.FeedInput(strings.Repeat("1", DefaultMaxInputSize+1), nil)
	handler.FeedInput("7", nil)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", val)
	assert.Contains(t, out.String(), ErrInputTooLarge.Error())
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_Input_Cancelled(t *testing.T) {
	handler := NewTextHandler(io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_SystemOutput_UsesRenderer(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "rendered: " + s, nil
	}))

	require.NoError(t, handler.SystemOutput(context.Background(), "help\n"))
	assert.Equal(t, "rendered: help\n", out.String())
}
