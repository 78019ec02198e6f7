package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACAuthenticator_RoundTrip(t *testing.T) {
	a := NewHMACAuthenticator("secret")

	token, err := a.SignToken(UserInfo{
		UserID:   "u1",
		Username: "alice",
		Avatar:   "alice.png",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)

	user, err := a.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", user.UserID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, RoleAdmin, user.Role)
}

func TestHMACAuthenticator_RejectsTampering(t *testing.T) {
	a := NewHMACAuthenticator("secret")
	token, err := a.SignToken(UserInfo{UserID: "u1", Username: "alice"})
	require.NoError(t, err)

	payload, sig, _ := strings.Cut(token, ".")

	// Forged claims keeping the original signature.
	forged, err := a.SignToken(UserInfo{UserID: "u1", Username: "alice", Role: RoleAdmin})
	require.NoError(t, err)
	forgedPayload, _, _ := strings.Cut(forged, ".")
	_, err = a.Verify(forgedPayload + "." + sig)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Truncated signature.
	_, err = a.Verify(payload + "." + sig[:len(sig)-2])
	require.ErrorIs(t, err, ErrInvalidToken)

	// Structurally broken tokens.
	for _, bad := range []string{"", "no-dot", payload + ".zzzz", ".deadbeef"} {
		_, err = a.Verify(bad)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}

func TestHMACAuthenticator_RejectsOtherSecret(t *testing.T) {
	minter := NewHMACAuthenticator("their-secret")
	verifier := NewHMACAuthenticator("our-secret")

	token, err := minter.SignToken(UserInfo{UserID: "u1", Username: "mallory"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACAuthenticator_RequiresUserID(t *testing.T) {
	a := NewHMACAuthenticator("secret")
	token, err := a.SignToken(UserInfo{Username: "ghost"})
	require.NoError(t, err)

	_, err = a.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACAuthenticator_IsAdmin(t *testing.T) {
	a := NewHMACAuthenticator("secret")

	require.False(t, a.IsAdmin("u1"), "unseen users are not admins")

	token, err := a.SignToken(UserInfo{UserID: "u1", Username: "alice", Role: RoleAdmin})
	require.NoError(t, err)
	_, err = a.Verify(token)
	require.NoError(t, err)
	require.True(t, a.IsAdmin("u1"))

	token, err = a.SignToken(UserInfo{UserID: "u2", Username: "bob", Role: "player"})
	require.NoError(t, err)
	_, err = a.Verify(token)
	require.NoError(t, err)
	require.False(t, a.IsAdmin("u2"))
}
