// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package slug generates randomized, URL-safe public identifiers for
// groups and posts and retries them against storage until one is free.
package slug

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
)

const (
	// Width is the length of a slug before the timestamp counter.
	Width = 64
	// PrefixLength caps the readable part derived from the phrase.
	PrefixLength = 16
	// DefaultMaxAttempts bounds the generate, check and retry loop.
	DefaultMaxAttempts = 16
)

// hyphen offsets inserted for readability
var separators = [...]int{32, 48}

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ErrExhausted is returned when no free slug was found within the budget.
var ErrExhausted = apperr.Exhausted("failed to generate a unique slug, try again later")

// ErrTaken signals that a candidate lost a race at insert time. Create
// callbacks return it to make Unique try the next candidate.
var ErrTaken = errors.New("slug already taken")

// Normalize turns a phrase into the readable slug prefix: accents stripped,
// lowercase, only [a-z0-9-], whitespace collapsed into single hyphens and
// cut to PrefixLength.
func Normalize(phrase string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, phrase)
	if err != nil {
		s = phrase
	}
	s = strings.ToLower(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if len(s) > PrefixLength {
		s = strings.TrimSpace(s[:PrefixLength])
	}
	return strings.ReplaceAll(s, " ", "-")
}

// Generate returns a new slug for phrase. Calls with the same phrase return
// different values.
func Generate(phrase string) string {
	prefix := Normalize(phrase)

	var b strings.Builder
	b.Grow(Width + 20)
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('-')
	}

	body := []byte(b.String())
	random := randomChars(Width - len(body))
	body = append(body, random...)
	for _, at := range separators {
		body[at] = '-'
	}

	return string(body) + strconv.FormatInt(time.Now().UnixNano(), 10)
}

func randomChars(n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("slug: reading random bytes: %v", err))
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return buf
}

// ExistsFunc reports whether a candidate slug is already in use.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// CreateFunc tries to persist a row under candidate. Returning ErrTaken
// makes the generator retry with a fresh candidate.
type CreateFunc func(ctx context.Context, candidate string) error

// Generator runs the bounded collision-avoidance loop.
type Generator struct {
	MaxAttempts int
	// OnAttempt, when set, is called once per candidate tried.
	OnAttempt func()
	// next returns candidates; tests replace it to force collisions.
	next func(phrase string) string
}

// NewGenerator creates a generator with the given attempt budget.
func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{MaxAttempts: maxAttempts, next: Generate}
}

// Unique tries candidates until exists reports a free one.
func (g *Generator) Unique(ctx context.Context, phrase string, exists ExistsFunc) (string, error) {
	var found string
	err := g.Create(ctx, phrase, exists, func(_ context.Context, candidate string) error {
		found = candidate
		return nil
	})
	return found, err
}

// Create checks candidates with exists and persists the first free one
// with create. A create that reports ErrTaken consumes an attempt and the
// loop continues, so UNIQUE violations at insert time are retried as well.
func (g *Generator) Create(ctx context.Context, phrase string, exists ExistsFunc, create CreateFunc) error {
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.OnAttempt != nil {
			g.OnAttempt()
		}

		candidate := g.next(phrase)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			continue
		}

		err = create(ctx, candidate)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTaken) {
			return err
		}
	}
	return ErrExhausted
}
