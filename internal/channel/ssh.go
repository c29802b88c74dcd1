package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"devtriage/internal/domain"
)

// SSHOptions holds connection settings for an SSH channel
type SSHOptions struct {
	// ConnectTimeout bounds dialing and the SSH handshake
	ConnectTimeout time.Duration
	// CommandTimeout bounds a single Execute call
	CommandTimeout time.Duration
	// KnownHostsPath pins host keys; empty accepts any host key
	KnownHostsPath string
}

// DefaultSSHOptions returns sensible defaults
func DefaultSSHOptions() SSHOptions {
	return SSHOptions{
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
	}
}

// SSH runs commands on a device over an SSH connection
type SSH struct {
	client         *ssh.Client
	addr           string
	commandTimeout time.Duration
}

// DialSSH connects to host:port and authenticates with cred
func DialSSH(ctx context.Context, host string, port int, cred domain.Credential, opts SSHOptions) (*SSH, error) {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.CommandTimeout == 0 {
		opts.CommandTimeout = 30 * time.Second
	}

	config, err := buildSSHConfig(cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	// The handshake is not context-aware; bound it with a deadline instead
	_ = conn.SetDeadline(time.Now().Add(opts.ConnectTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return &SSH{
		client:         ssh.NewClient(sshConn, chans, reqs),
		addr:           addr,
		commandTimeout: opts.CommandTimeout,
	}, nil
}

// buildSSHConfig creates an SSH client config from a credential
func buildSSHConfig(cred domain.Credential, opts SSHOptions) (*ssh.ClientConfig, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	var auth ssh.AuthMethod
	switch cred.Type {
	case domain.CredentialSSHKey:
		var signer ssh.Signer
		var err error
		if cred.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(cred.PrivateKey, []byte(cred.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(cred.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = ssh.PublicKeys(signer)
	case domain.CredentialSSHPassword:
		auth = ssh.Password(cred.Password)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if opts.KnownHostsPath != "" {
		cb, err := knownhosts.New(opts.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		hostKeyCallback = cb
	} else {
		log.Printf("SSH: Warning: no known_hosts configured, host key will not be verified")
	}

	return &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback,
		Timeout:         opts.ConnectTimeout,
	}, nil
}

// Execute runs cmd in a new session and returns its stdout.
// A non-zero exit status is an error carrying the command's stderr.
func (s *SSH) Execute(ctx context.Context, cmd string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session on %s: %w", s.addr, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd)
	}()

	timer := time.NewTimer(s.commandTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				return "", fmt.Errorf("command exited with status %d: %s",
					exitErr.ExitStatus(), strings.TrimSpace(stderr.String()))
			}
			return "", fmt.Errorf("command failed: %w", err)
		}
		return stdout.String(), nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case <-timer.C:
		_ = session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout after %s", s.commandTimeout)
	}
}

// Close closes the underlying SSH client
func (s *SSH) Close() error {
	return s.client.Close()
}
