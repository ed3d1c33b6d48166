package secret

// Store provides a pluggable interface for storing sensitive data
// such as mirror target passwords. File and environment backends ship
// by default, but can be swapped for Vault, a keychain, etc.
type Store interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns nil and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}
