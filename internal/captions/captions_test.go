package captions

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accepts any url, including an empty one, unless listed in fail
type fakeCaptioner struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeCaptioner) Caption(_ context.Context, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, imageURL)
	if f.fail[imageURL] {
		return "", errors.New("captioning failed")
	}
	return "caption of " + imageURL, nil
}

func batch(numbers ...int) []models.ImageResponse {
	images := make([]models.ImageResponse, 0, len(numbers))
	for _, n := range numbers {
		images = append(images, models.ImageResponse{
			StoryID:     "s1",
			ImagePath:   "img" + strconv.Itoa(n),
			ImageNumber: n,
		})
	}
	return images
}

func TestDescribeOrdersByImageNumber(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
	}{
		{name: "already ordered", numbers: []int{1, 2, 3, 4}},
		{name: "reversed", numbers: []int{4, 3, 2, 1}},
		{name: "shuffled", numbers: []int{3, 1, 4, 2}},
		{name: "single", numbers: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCaptioner{}
			desc, err := Describe(context.Background(), c, batch(tt.numbers...))
			require.NoError(t, err)

			segments := strings.Split(desc, Delimiter)
			require.Len(t, segments, len(tt.numbers))
			for i, seg := range segments {
				n := strconv.Itoa(i + 1)
				assert.Equal(t, n+". caption of img"+n, seg)
			}
			assert.Len(t, c.calls, len(tt.numbers))
		})
	}
}

func TestDescribeDoesNotMutateInput(t *testing.T) {
	images := batch(2, 1)
	_, err := Describe(context.Background(), &fakeCaptioner{}, images)
	require.NoError(t, err)
	assert.Equal(t, 2, images[0].ImageNumber)
	assert.Equal(t, 1, images[1].ImageNumber)
}

func TestDescribeSingleFailureKeepsSlot(t *testing.T) {
	c := &fakeCaptioner{fail: map[string]bool{"img3": true}}
	desc, err := Describe(context.Background(), c, batch(4, 3, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(desc, FailedCaption))
	segments := strings.Split(desc, Delimiter)
	assert.Equal(t, "3. [Analysis failed]", segments[2])
	assert.Equal(t, "4. caption of img4", segments[3])
}

func TestCaptionSkipsImageWithoutPath(t *testing.T) {
	images := batch(1, 2, 3)
	images[1].ImagePath = ""
	c := &fakeCaptioner{}

	got := Caption(context.Background(), c, images)

	assert.Equal(t, "1. caption of img1 | 2. [Analysis failed] | 3. caption of img3", got.Description())
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, []string{"img1", "img3"}, c.calls, "captioner never sees an empty path")
}

func TestDescribeEmptyBatch(t *testing.T) {
	c := &fakeCaptioner{}
	_, err := Describe(context.Background(), c, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Empty(t, c.calls)
}

func TestCaptionFunc(t *testing.T) {
	var got string
	f := CaptionFunc(func(_ context.Context, imageURL string) (string, error) {
		got = imageURL
		return "ok", nil
	})
	desc, err := f.Caption(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", desc)
	assert.Equal(t, "u", got)
}
