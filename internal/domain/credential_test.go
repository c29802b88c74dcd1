package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialValidate(t *testing.T) {
	tests := []struct {
		name    string
		cred    Credential
		wantErr bool
	}{
		{"key", Credential{Type: CredentialSSHKey, Username: "shell", PrivateKey: []byte("k")}, false},
		{"password", Credential{Type: CredentialSSHPassword, Username: "shell", Password: "p"}, false},
		{"no username", Credential{Type: CredentialSSHPassword, Password: "p"}, true},
		{"key missing", Credential{Type: CredentialSSHKey, Username: "shell"}, true},
		{"password missing", Credential{Type: CredentialSSHPassword, Username: "shell"}, true},
		{"unknown type", Credential{Type: "token", Username: "shell"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredentialSecretsNotSerialized(t *testing.T) {
	cred := Credential{
		Type:       CredentialSSHKey,
		Username:   "shell",
		PrivateKey: []byte("PRIVATE"),
		Passphrase: "hunter2",
	}
	data, err := json.Marshal(cred)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "PRIVATE")
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), `"username":"shell"`)
}
