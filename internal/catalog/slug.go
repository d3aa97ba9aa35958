package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses non-alphanumeric runs to hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "item"
	}
	return slug
}

// slugExistsFunc reports whether a slug is taken by a row other than excludeID.
type slugExistsFunc func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

// allocateSlug returns the base slug, or the first -1, -2, ... suffixed variant
// that is free. Allocation is idempotent for an entity keeping its name: the
// exclusion makes its own slug count as free.
func allocateSlug(ctx context.Context, base string, excludeID uuid.UUID, exists slugExistsFunc) (string, error) {
	taken, err := exists(ctx, base, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
