package platform

import (
	"context"
	"errors"
	"strings"

	"inkwell/api/internal/docstore"
	"inkwell/api/internal/util"
)

const slugSuffixLen = 30

// generateSlug builds a slug from the title and author username, appends a
// random alphanumeric suffix, and retries with a further suffix appended to
// the same string until the lookup misses.
//
// This is probabilistically unique, not rejection-safe: correctness rests
// on the per-attempt collision probability being astronomically small, not
// on any mutual exclusion. Two concurrent requests landing the same slug at
// the same instant would both pass the existence check.
func (s *Service) generateSlug(ctx context.Context, title, username string) (string, error) {
	slug := slugify(title) + username + util.RandomAlphanumeric(slugSuffixLen)
	for {
		_, err := s.posts.FindOne(ctx, docstore.Filter{"slug": slug})
		if errors.Is(err, docstore.ErrNoDocuments) {
			return slug, nil
		}
		if err != nil {
			return "", serverError(err)
		}
		slug += util.RandomAlphanumeric(slugSuffixLen)
	}
}

// slugify lowercases and reduces a title to hyphen-separated alphanumeric
// runs: "Hello, World!" -> "hello-world".
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
