// Package keybackend resolves the relay's signing secret from configuration.
package keybackend

import (
	"log/slog"
)

// MinRecommendedLength is the secret length below which a warning is logged.
const MinRecommendedLength = 32

// SecretConfig holds the sources for the signing secret.
type SecretConfig struct {
	Inline string `mapstructure:"secret_key"`  // Secret given directly in config or env
	File   string `mapstructure:"secret_file"` // Path to a file containing the secret
}

// LoadSecret returns the signing secret. A configured file takes precedence
// over the inline value so that deployments can mount the secret instead
// of exposing it in the environment.
func LoadSecret(cfg SecretConfig) ([]byte, error) {
	var secret []byte

	switch {
	case cfg.File != "":
		s, err := LoadSecretFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		secret = s
	case cfg.Inline != "":
		secret = []byte(cfg.Inline)
	default:
		return nil, ErrSecretNotConfigured
	}

	if len(secret) < MinRecommendedLength {
		slog.Warn("signing secret is shorter than recommended", "length", len(secret), "recommended", MinRecommendedLength)
	}

	return secret, nil
}
