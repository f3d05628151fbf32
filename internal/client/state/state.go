// Package state holds the client-side containers for the signed-in user, the
// service directory and announcements. Containers are safe for concurrent
// use. A request keeps running after its caller's context is cancelled and
// its result is still applied.
package state

import (
	"context"
	"errors"
)

var ErrNotSignedIn = errors.New("you need to sign in first")

// detach strips cancellation from ctx so an abandoned request still resolves.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
