// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package slug

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		phrase   string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Crème   Brûlée!  ", "creme-brulee"},
		{"Ünïcödé Straße", "unicode-strae"},
		{"a very long phrase that is cut", "a-very-long-phra"},
		{"word             trailing", "word-trailing"},
		{"", ""},
		{"!!!", ""},
		{"日本語", ""},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.phrase))
		})
	}
}

func TestNormalize_NoTrailingHyphenAfterCut(t *testing.T) {
	// The 16th character is a space, which is trimmed before hyphenation.
	got := Normalize("fifteen chars x more words")
	assert.Equal(t, "fifteen-chars-x", got)
}

func TestGenerate_Shape(t *testing.T) {
	s := Generate("Hello World")

	require.Greater(t, len(s), Width)
	body := s[:Width]
	assert.True(t, strings.HasPrefix(body, "hello-world-"))
	assert.Equal(t, byte('-'), body[32])
	assert.Equal(t, byte('-'), body[48])
	assert.Regexp(t, slugPattern, s)
	assert.Regexp(t, `^[0-9]+$`, s[Width:])
}

func TestGenerate_EmptyPhraseIsAllRandom(t *testing.T) {
	s := Generate("")

	body := s[:Width]
	assert.NotEqual(t, byte('-'), body[0])
	assert.Equal(t, byte('-'), body[32])
	assert.Regexp(t, slugPattern, s)
}

func TestGenerate_NotDeterministic(t *testing.T) {
	assert.NotEqual(t, Generate("same"), Generate("same"))
}

func TestGenerate_BulkUnique(t *testing.T) {
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s := Generate("Hello World")
				mu.Lock()
				seen[s] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestUnique_RetriesOnCollision(t *testing.T) {
	g := NewGenerator(DefaultMaxAttempts)
	first := Generate("Hello World")
	calls := 0
	g.next = func(phrase string) string {
		calls++
		if calls == 1 {
			return first
		}
		return Generate(phrase)
	}

	exists := func(_ context.Context, candidate string) (bool, error) {
		return candidate == first, nil
	}

	got, err := g.Unique(context.Background(), "Hello World", exists)

	require.NoError(t, err)
	assert.NotEqual(t, first, got)
	assert.Equal(t, 2, calls)
	assert.True(t, strings.HasPrefix(got, "hello-world-"))
}

func TestUnique_Exhausted(t *testing.T) {
	g := NewGenerator(4)
	attempts := 0
	g.OnAttempt = func() { attempts++ }

	_, err := g.Unique(context.Background(), "x", func(context.Context, string) (bool, error) {
		return true, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.True(t, apperr.Is(err, apperr.KindExhausted))
	assert.Equal(t, 4, attempts)
}

func TestUnique_ExistsError(t *testing.T) {
	g := NewGenerator(4)
	boom := errors.New("db down")

	_, err := g.Unique(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestCreate_RetriesWhenInsertLosesRace(t *testing.T) {
	g := NewGenerator(DefaultMaxAttempts)
	free := func(context.Context, string) (bool, error) { return false, nil }

	var stored []string
	inserts := 0
	err := g.Create(context.Background(), "race", free, func(_ context.Context, candidate string) error {
		inserts++
		if inserts < 3 {
			return ErrTaken
		}
		stored = append(stored, candidate)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, inserts)
	assert.Len(t, stored, 1)
}

func TestCreate_PropagatesOtherErrors(t *testing.T) {
	g := NewGenerator(DefaultMaxAttempts)
	boom := errors.New("constraint on another column")
	inserts := 0

	err := g.Create(context.Background(), "x",
		func(context.Context, string) (bool, error) { return false, nil },
		func(context.Context, string) error {
			inserts++
			return boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inserts)
}

func TestCreate_ContextCanceled(t *testing.T) {
	g := NewGenerator(DefaultMaxAttempts)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Create(ctx, "x",
		func(context.Context, string) (bool, error) { return false, nil },
		func(context.Context, string) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomChars_Uniform(t *testing.T) {
	const perChar = 2000
	counts := make(map[byte]int, len(alphabet))
	for _, c := range randomChars(perChar * len(alphabet)) {
		counts[c]++
	}

	require.Len(t, counts, len(alphabet))
	for _, c := range []byte(alphabet) {
		assert.InDelta(t, perChar, counts[c], 200, "character %q", c)
	}
}
