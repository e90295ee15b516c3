package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const tokenBytes = 16

// TokenStore issues login tokens and checks them on later requests.
//
// Issued tokens live in a bounded LRU and expire after the configured TTL.
// A token read from the token file at startup is accepted for the life of
// the process.
type TokenStore struct {
	live   *lru.LRU[string, time.Time]
	static string
	file   string
}

// NewTokenStore creates a store holding at most size live tokens. When
// tokenFile is set, an existing token in it is accepted and every issued
// token is written back to it.
func NewTokenStore(size int, ttl time.Duration, tokenFile string) (*TokenStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("token store size must be positive")
	}
	store := &TokenStore{
		live: lru.NewLRU[string, time.Time](size, nil, ttl),
		file: tokenFile,
	}
	if tokenFile == "" {
		return store, nil
	}

	data, err := os.ReadFile(tokenFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read token file: %w", err)
	default:
		store.static = strings.TrimSpace(string(data))
	}
	return store, nil
}

// Issue creates a new random token.
func (s *TokenStore) Issue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	s.live.Add(token, time.Now())

	if s.file != "" {
		if err := writeTokenFile(s.file, token); err != nil {
			return "", err
		}
	}
	return token, nil
}

// Valid reports whether token was issued and has not expired, or matches
// the token file.
func (s *TokenStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	if _, ok := s.live.Get(token); ok {
		return true
	}
	return s.static != "" && subtle.ConstantTimeCompare([]byte(s.static), []byte(token)) == 1
}

// Len reports the number of live issued tokens.
func (s *TokenStore) Len() int {
	return s.live.Len()
}

func writeTokenFile(path, token string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
