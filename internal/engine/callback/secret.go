package callback

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"callback/internal/pkg/errors"
)

const DefaultSecretKey = "callback_secret"

// LoadSecret reads the signing key from path using DefaultSecretKey.
func LoadSecret(path string) ([]byte, error) {
	return LoadSecretKey(path, DefaultSecretKey)
}

// LoadSecretKey reads the signing key from path. The file is either a
// key=value config file, where the line for key holds the secret, or a bare
// secret whose trimmed content is the key.
func LoadSecretKey(path, key string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ConfigurationError{Path: path, Err: fmt.Errorf("failed to read secret file: %w", err)}
	}

	secret, err := parseSecret(string(content), key)
	if err != nil {
		return nil, &errors.ConfigurationError{Path: path, Err: err}
	}
	return []byte(secret), nil
}

// assignment matches a config line such as "callback_secret=..." but not a
// base64 secret whose only '=' characters are trailing padding.
var assignment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*\s*=\s*[^=\s]`)

func parseSecret(content, key string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.ErrEmptySecret
	}
	if key == "" {
		return trimmed, nil
	}

	configShaped := false
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if assignment.MatchString(line) {
			configShaped = true
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(name) != key {
			continue
		}

		value = unquote(strings.TrimSpace(value))
		if value == "" {
			return "", fmt.Errorf("%s: %w", key, errors.ErrEmptySecret)
		}
		return value, nil
	}

	if configShaped {
		return "", fmt.Errorf("%s not found in secret file", key)
	}
	return trimmed, nil
}

// unquote removes exactly one layer of matching quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
