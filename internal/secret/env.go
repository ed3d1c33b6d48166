package secret

import (
	"errors"
	"os"
	"strings"
)

const envPrefix = "GRIDBASE_SECRET_"

// EnvStore reads secrets from environment variables. A secret for key
// "tgt-1" is looked up as GRIDBASE_SECRET_TGT_1. The store is read-only:
// writes belong to the deployment, not the process.
type EnvStore struct{}

// NewEnvStore creates a new EnvStore.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Set always fails: environment secrets are managed outside the process.
func (e *EnvStore) Set(key string, value []byte) error {
	return errors.New("env secret store is read-only")
}

// Get looks up GRIDBASE_SECRET_<KEY>. Unset means no secret.
func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(envPrefix + envKey(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

// Delete always fails for the same reason Set does.
func (e *EnvStore) Delete(key string) error {
	return errors.New("env secret store is read-only")
}

func envKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
}
