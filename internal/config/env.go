package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"devtriage/internal/domain"
)

// LoadEnv loads KEY=value pairs from the given .env files into the process
// environment. Variables already set are not overridden and missing files are
// skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Credential resolves the SSH credential for a target from its key file and
// environment variables
func (t Target) Credential() (domain.Credential, error) {
	if t.KeyPath != "" {
		key, err := os.ReadFile(t.KeyPath)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("read key: %w", err)
		}
		cred := domain.Credential{
			Type:       domain.CredentialSSHKey,
			Username:   t.User,
			PrivateKey: key,
		}
		if t.PassphraseEnv != "" {
			cred.Passphrase = os.Getenv(t.PassphraseEnv)
		}
		return cred, cred.Validate()
	}

	if t.PasswordEnv == "" {
		return domain.Credential{}, fmt.Errorf("target %q has no key_path or password_env", t.Name)
	}
	password, ok := os.LookupEnv(t.PasswordEnv)
	if !ok {
		return domain.Credential{}, fmt.Errorf("environment variable %s is not set", t.PasswordEnv)
	}
	cred := domain.Credential{
		Type:     domain.CredentialSSHPassword,
		Username: t.User,
		Password: password,
	}
	return cred, cred.Validate()
}
