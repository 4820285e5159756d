// Package creds resolves named credentials and scopes their use.
package creds

import (
	"fmt"
	"os"
	"strings"

	"github.com/deploy-man/deploy-man/internal/config"
)

// Credential is a short-lived pair of secret values. It is only valid inside
// the WithCredential scope that produced it and must never be persisted.
type Credential struct {
	Username string
	Secret   string
}

// String redacts the credential so it can never leak through logging or
// formatted errors.
func (c Credential) String() string {
	return "Credential{<redacted>}"
}

// GoString redacts %#v formatting as well.
func (c Credential) GoString() string {
	return c.String()
}

// NotFoundError indicates a credential id has no entry in the store
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("credential not found: %s", e.ID)
}

// Store resolves credential ids to credentials
type Store interface {
	Lookup(id string) (Credential, error)
}

// EnvStore resolves credentials from the process environment:
// DEPLOYMAN_CRED_<ID>_USERNAME and DEPLOYMAN_CRED_<ID>_SECRET, where <ID>
// is the credential id upper-cased with dashes replaced by underscores.
type EnvStore struct{}

// NewEnvStore creates an environment-backed credential store
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Lookup resolves a credential id from the environment
func (s *EnvStore) Lookup(id string) (Credential, error) {
	key := envKey(id)
	username, okUser := os.LookupEnv(config.EnvCredPrefix + key + "_USERNAME")
	secret, okSecret := os.LookupEnv(config.EnvCredPrefix + key + "_SECRET")
	if !okUser || !okSecret || secret == "" {
		return Credential{}, &NotFoundError{ID: id}
	}
	return Credential{Username: username, Secret: secret}, nil
}

// envKey normalizes a credential id into an environment variable fragment
func envKey(id string) string {
	key := strings.ToUpper(id)
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, ".", "_")
	return key
}
