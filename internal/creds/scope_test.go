package creds

import (
	"context"
	"errors"
	"testing"
)

type staticStore map[string]Credential

func (s staticStore) Lookup(id string) (Credential, error) {
	cred, ok := s[id]
	if !ok {
		return Credential{}, &NotFoundError{ID: id}
	}
	return cred, nil
}

func TestWithCredentialReleasesAfterBody(t *testing.T) {
	store := staticStore{"reg": {Username: "u", Secret: "s"}}

	var order []string
	err := WithCredential(context.Background(), store, "reg",
		func(ctx context.Context, cred Credential) error {
			order = append(order, "release")
			return nil
		},
		func(ctx context.Context, cred Credential) error {
			order = append(order, "body")
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "body" || order[1] != "release" {
		t.Errorf("expected body then release, got %v", order)
	}
}

func TestWithCredentialReleasesOnBodyError(t *testing.T) {
	store := staticStore{"reg": {Username: "u", Secret: "s"}}
	bodyErr := errors.New("push failed")

	released := 0
	err := WithCredential(context.Background(), store, "reg",
		func(ctx context.Context, cred Credential) error {
			released++
			return nil
		},
		func(ctx context.Context, cred Credential) error {
			return bodyErr
		})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body error, got %v", err)
	}
	if released != 1 {
		t.Errorf("expected release to run exactly once, ran %d times", released)
	}
}

func TestWithCredentialReleasesOnPanic(t *testing.T) {
	store := staticStore{"reg": {Username: "u", Secret: "s"}}

	released := 0
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = WithCredential(context.Background(), store, "reg",
			func(ctx context.Context, cred Credential) error {
				released++
				return nil
			},
			func(ctx context.Context, cred Credential) error {
				panic("boom")
			})
	}()

	if released != 1 {
		t.Errorf("expected release to run exactly once, ran %d times", released)
	}
}

func TestWithCredentialReleaseErrorDoesNotMaskBody(t *testing.T) {
	store := staticStore{"reg": {Username: "u", Secret: "s"}}

	err := WithCredential(context.Background(), store, "reg",
		func(ctx context.Context, cred Credential) error {
			return errors.New("logout failed")
		},
		func(ctx context.Context, cred Credential) error {
			return nil
		})
	if err != nil {
		t.Errorf("release failure must not fail the scope, got %v", err)
	}
}

func TestWithCredentialMissingCredential(t *testing.T) {
	store := staticStore{}

	bodyRan := false
	releaseRan := false
	err := WithCredential(context.Background(), store, "missing",
		func(ctx context.Context, cred Credential) error {
			releaseRan = true
			return nil
		},
		func(ctx context.Context, cred Credential) error {
			bodyRan = true
			return nil
		})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if bodyRan {
		t.Error("body must not run without a credential")
	}
	if releaseRan {
		t.Error("release must not run without a credential")
	}
}

func TestWithCredentialNilRelease(t *testing.T) {
	store := staticStore{"reg": {Username: "u", Secret: "s"}}

	err := WithCredential(context.Background(), store, "reg", nil,
		func(ctx context.Context, cred Credential) error {
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
