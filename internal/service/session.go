package service

import (
	"context"
	"errors"

	"mpihole/internal/pihole"
)

// withSession runs call with an authenticated client, logging in first
// when there is no session and once more when the session has expired.
func withSession[T any](ctx context.Context, api PiHole, call func() (T, error)) (T, error) {
	var zero T
	if !api.Authenticated() {
		if err := api.Auth(ctx); err != nil {
			return zero, err
		}
	}
	v, err := call()
	if errors.Is(err, pihole.ErrUnauthorized) {
		if err := api.Auth(ctx); err != nil {
			return zero, err
		}
		return call()
	}
	return v, err
}
