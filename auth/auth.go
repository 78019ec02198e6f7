package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const RoleAdmin = "admin"

// UserInfo is what the account service asserts about a token holder. Username
// and avatar are whatever the profile held when the token was minted.
type UserInfo struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// Authenticator is the boundary toward the account service.
type Authenticator interface {
	Verify(token string) (UserInfo, error)
	IsAdmin(userID string) bool
}

// HMACAuthenticator verifies tokens of the form base64(claims).hexsig where
// sig = HMAC-SHA256(secret, base64(claims)). Verified roles are remembered so
// IsAdmin can answer for users seen this process lifetime.
type HMACAuthenticator struct {
	secret []byte

	mu    sync.RWMutex
	roles map[string]string
}

func NewHMACAuthenticator(secret string) *HMACAuthenticator {
	return &HMACAuthenticator{
		secret: []byte(secret),
		roles:  make(map[string]string),
	}
}

// SignToken mints a token for the given claims. Used by tooling and tests;
// production tokens come from the account service sharing the same secret.
func (a *HMACAuthenticator) SignToken(user UserInfo) (string, error) {
	claims, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(claims)

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil)), nil
}

func (a *HMACAuthenticator) Verify(token string) (UserInfo, error) {
	payload, sig, found := strings.Cut(token, ".")
	if !found {
		return UserInfo{}, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	want := mac.Sum(nil)

	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(got, want) {
		return UserInfo{}, ErrInvalidToken
	}

	claims, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return UserInfo{}, ErrInvalidToken
	}

	var user UserInfo
	if err := json.Unmarshal(claims, &user); err != nil {
		return UserInfo{}, ErrInvalidToken
	}
	if user.UserID == "" {
		return UserInfo{}, ErrInvalidToken
	}

	a.mu.Lock()
	a.roles[user.UserID] = user.Role
	a.mu.Unlock()

	return user, nil
}

func (a *HMACAuthenticator) IsAdmin(userID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.roles[userID] == RoleAdmin
}
