package domain

import "fmt"

// CredentialType selects the SSH authentication method
type CredentialType string

const (
	CredentialSSHKey      CredentialType = "ssh_key"
	CredentialSSHPassword CredentialType = "ssh_password"
)

// Credential holds login material for a device.
// Secret values are never serialized.
type Credential struct {
	Type       CredentialType `json:"type" yaml:"type"`
	Username   string         `json:"username" yaml:"username"`
	PrivateKey []byte         `json:"-" yaml:"-"`
	Passphrase string         `json:"-" yaml:"-"`
	Password   string         `json:"-" yaml:"-"`
}

// Validate checks that the fields required by the credential type are set
func (c Credential) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username not set in %s credential", c.Type)
	}
	switch c.Type {
	case CredentialSSHKey:
		if len(c.PrivateKey) == 0 {
			return fmt.Errorf("private key not set in SSH key credential")
		}
	case CredentialSSHPassword:
		if c.Password == "" {
			return fmt.Errorf("password not set in SSH password credential")
		}
	default:
		return fmt.Errorf("unsupported credential type: %s", c.Type)
	}
	return nil
}
