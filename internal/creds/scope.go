package creds

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ReleaseFunc revokes whatever access the credential granted (e.g. a registry
// logout). It runs on every exit path of WithCredential and must not panic.
type ReleaseFunc func(ctx context.Context, cred Credential) error

// BodyFunc is the block of work performed while the credential is held.
type BodyFunc func(ctx context.Context, cred Credential) error

// WithCredential resolves id from the store, invokes body with the credential
// and guarantees release runs exactly once afterwards, whether body returns
// normally, returns an error, or panics. A release failure is logged but never
// masks body's result.
func WithCredential(ctx context.Context, store Store, id string, release ReleaseFunc, body BodyFunc) error {
	cred, err := store.Lookup(id)
	if err != nil {
		return err
	}

	defer func() {
		if release == nil {
			return
		}
		if err := release(ctx, cred); err != nil {
			logrus.Warnf("Failed to release credential %s: %v", id, err)
		}
	}()

	return body(ctx, cred)
}
