package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	replies []string
	errs    []error
	prompts []string
}

func (p *scriptedProvider) ExtractText(_ context.Context, config Config) (string, error) {
	i := len(p.prompts)
	p.prompts = append(p.prompts, config.Prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	return p.replies[i], nil
}

func TestNarratorGenerateStory(t *testing.T) {
	p := &scriptedProvider{replies: []string{"  We walked by the sea.\n", "\"Seaside Walk\""}}
	n := NewNarrator(p, "test-model")

	resp, err := n.GenerateStory(context.Background(), "1. a beach | 2. a dog")
	require.NoError(t, err)
	assert.Equal(t, "We walked by the sea.", resp.Story)
	assert.Equal(t, "Seaside Walk", resp.Title)

	require.Len(t, p.prompts, 2)
	assert.True(t, strings.HasSuffix(p.prompts[0], "1. a beach | 2. a dog"))
	assert.True(t, strings.HasSuffix(p.prompts[1], "We walked by the sea."))
}

func TestNarratorTitleFailureFailsStory(t *testing.T) {
	p := &scriptedProvider{
		replies: []string{"story", ""},
		errs:    []error{nil, errors.New("quota exceeded")},
	}
	n := NewNarrator(p, "test-model")

	resp, err := n.GenerateStory(context.Background(), "1. a cat")
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Empty(t, resp.Story)
}
