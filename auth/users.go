// Package auth holds the credential and token checks used by the HTTP API.
package auth

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"strings"
)

// Users maps an email address to its password.
type Users struct {
	passwords map[string]string
}

// LoadUsers reads an email:password file.
func LoadUsers(path string) (*Users, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	users, err := ParseUsers(f)
	if err != nil {
		return nil, fmt.Errorf("read users file %s: %w", path, err)
	}
	return users, nil
}

// ParseUsers reads one email:password pair per line. Blank lines and lines
// without a separator are skipped.
func ParseUsers(r io.Reader) (*Users, error) {
	users := &Users{passwords: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		email, password, ok := strings.Cut(line, ":")
		if !ok || email == "" {
			continue
		}
		users.passwords[email] = password
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Len reports the number of known users.
func (u *Users) Len() int {
	if u == nil {
		return 0
	}
	return len(u.passwords)
}

// Verify reports whether password belongs to email.
func (u *Users) Verify(email, password string) bool {
	if u == nil {
		return false
	}
	stored, ok := u.passwords[email]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
