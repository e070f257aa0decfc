package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/pkg/llm"
)

// fakeGenerator records prompts and returns a canned answer.
type fakeGenerator struct {
	answer  string
	err     error
	block   bool
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func TestChatbotService_Respond(t *testing.T) {
	gen := &fakeGenerator{answer: "That sounds hard. What would help most right now?"}
	svc := NewChatbotService(gen, time.Second, nil, zap.NewNop())

	got, err := svc.Respond(context.Background(), "  He forgot the groceries  ")
	require.NoError(t, err)
	assert.Equal(t, gen.answer, got)

	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "You are a caring and supportive AI counselor"))
	assert.True(t, strings.HasSuffix(gen.prompts[0], "\n\nUser: He forgot the groceries"))
}

func TestChatbotService_RejectsBeforeCalling(t *testing.T) {
	gen := &fakeGenerator{answer: "unused"}
	svc := NewChatbotService(gen, time.Second, nil, zap.NewNop())

	for _, msg := range []string{"", "   \n\t", strings.Repeat("x", 2001)} {
		_, err := svc.Respond(context.Background(), msg)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, gen.prompts)

	_, err := svc.Respond(context.Background(), strings.Repeat("é", 2000))
	assert.NoError(t, err, "limit counts characters, not bytes")
}

func TestChatbotService_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.Generator
	}{
		{"upstream error", &fakeGenerator{err: errors.New("status code: 503")}},
		{"empty answer", &fakeGenerator{err: llm.ErrEmptyResponse}},
		{"timeout", &fakeGenerator{block: true}},
		{"no client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChatbotService(tt.gen, 20*time.Millisecond, nil, zap.NewNop())
			got, err := svc.Respond(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, ChatbotFallback, got)
		})
	}
}
