package hooks

import (
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
)

// SanitizeContent returns a filter callback that strips unsafe HTML
// from the value using a user-generated-content policy. The value must
// be a string; anything else is a callback failure. Intended for the
// "content" filter.
func SanitizeContent() FilterFunc {
	policy := bluemonday.UGCPolicy()

	return func(ctx context.Context, value any, args ...any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("content filter: expected string value, got %T", value)
		}
		return policy.Sanitize(s), nil
	}
}
