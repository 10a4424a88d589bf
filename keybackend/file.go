package keybackend

import (
	"bytes"
	"fmt"
	"os"
)

// LoadSecretFromFile reads a signing secret from path. Surrounding
// whitespace, including the trailing newline most editors add, is removed.
func LoadSecretFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	secret := bytes.TrimSpace(data)
	if len(secret) == 0 {
		return nil, fmt.Errorf("read secret file %s: file is empty", path)
	}

	return secret, nil
}
