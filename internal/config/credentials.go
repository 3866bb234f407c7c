package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"mirrorlab/internal/domain"
)

// ResolveCredentials returns the device credentials from configuration,
// prompting interactively for whichever part is missing. Prompting
// requires a terminal on stdin; without one, missing credentials are an
// error rather than a hang.
func (c *Config) ResolveCredentials() (domain.Credentials, error) {
	creds := domain.Credentials{
		Username: c.Session.Username,
		Password: c.Session.Password,
	}
	if creds.Complete() {
		return creds, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return creds, fmt.Errorf("device credentials not configured and stdin is not a terminal")
	}

	if creds.Username == "" {
		username, err := promptLine(os.Stdin, os.Stderr, "Enter device username: ")
		if err != nil {
			return creds, fmt.Errorf("read username: %w", err)
		}
		creds.Username = username
	}

	if creds.Password == "" {
		fmt.Fprint(os.Stderr, "Enter device password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return creds, fmt.Errorf("read password: %w", err)
		}
		creds.Password = string(raw)
	}

	if !creds.Complete() {
		return creds, fmt.Errorf("device credentials incomplete")
	}
	return creds, nil
}

func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
