package auth

import (
	"encoding/base64"
	"strings"
)

// ParseBasic extracts the email and password from a Basic authorization
// header value.
func ParseBasic(header string) (email, password string, ok bool) {
	_, encoded, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return "", "", false
	}
	return email, password, true
}

// ParseBearer returns the token that follows the scheme in an authorization
// header value.
func ParseBearer(header string) (string, bool) {
	_, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
