package context

import (
	"context"
)

const keyUsername contextKey = "username"

// Username returns the authenticated username, or an empty string for
// anonymous requests.
func Username(ctx context.Context) string {
	username, ok := ctx.Value(keyUsername).(string)
	if !ok {
		return ""
	}

	return username
}

func SetUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, keyUsername, username)
}
