package gridbase

import (
	"fmt"
	"os"
	"strings"
)

// TokenFromFile reads an API token from path: first line, surrounding
// whitespace trimmed. Keeping tokens out of command lines and source
// is the caller's job; this just reads the file.
func TokenFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	token := strings.TrimSpace(line)
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}
