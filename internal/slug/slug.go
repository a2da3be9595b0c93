package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Checker reports whether a slug is already used by another row of the same
// entity type. excludeID is the caller's own row, 0 for a new row.
type Checker interface {
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, slug string, excludeID int64) (bool, error)

func (f CheckerFunc) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return f(ctx, slug, excludeID)
}

// Make lowercases name, strips accents and collapses every run of
// non-alphanumeric characters into a single '-'.
func Make(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}
	return b.String()
}

// Assign returns a unique slug for name, appending -1, -2, ... on
// collision. An empty result means the name produced no slug.
func Assign(ctx context.Context, checker Checker, name string, selfID int64) (string, error) {
	base := Make(name)
	if base == "" {
		return "", nil
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := checker.SlugTaken(ctx, candidate, selfID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Sluggable is implemented by catalog entities that carry a slug.
type Sluggable interface {
	GetID() int64
	GetSlug() string
	SetSlug(string)
	SlugSource() string
}

// Ensure assigns a slug to entity only if it has none yet.
func Ensure(ctx context.Context, checker Checker, entity Sluggable) error {
	if entity.GetSlug() != "" {
		return nil
	}
	s, err := Assign(ctx, checker, entity.SlugSource(), entity.GetID())
	if err != nil {
		return err
	}
	entity.SetSlug(s)
	return nil
}
