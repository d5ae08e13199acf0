// ABOUTME: Unit tests for the session store's role derivation and persistence.
// ABOUTME: Tests admin/customer tokens, malformed tokens, and token file round-trips.

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintToken builds an HS256 JWT with the given claims. The signing secret is
// irrelevant because the store never verifies signatures.
func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "sweetshop", "token"))
}

func TestStore_Role(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Role
	}{
		{
			name:  "no token",
			token: "",
			want:  RoleCustomer,
		},
		{
			name:  "admin claim true",
			token: "", // filled below, mintToken needs t
			want:  RoleAdmin,
		},
		{
			name:  "admin claim false",
			token: "-",
			want:  RoleCustomer,
		},
		{
			name:  "no admin claim",
			token: "-",
			want:  RoleCustomer,
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
			want:  RoleCustomer,
		},
		{
			name:  "two segments only",
			token: "header.payload",
			want:  RoleCustomer,
		},
		{
			name:  "payload not base64url",
			token: "eyJhbGciOiJIUzI1NiJ9.!!!.sig",
			want:  RoleCustomer,
		},
		{
			name:  "admin claim is a string not a bool",
			token: "-",
			want:  RoleCustomer,
		},
	}

	tokens := map[string]string{
		"admin claim true":                   mintToken(t, jwt.MapClaims{"sub": "admin1", "is_admin": true}),
		"admin claim false":                  mintToken(t, jwt.MapClaims{"sub": "user1", "is_admin": false}),
		"no admin claim":                     mintToken(t, jwt.MapClaims{"sub": "user1"}),
		"admin claim is a string not a bool": mintToken(t, jwt.MapClaims{"sub": "user1", "is_admin": "true"}),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			token := tt.token
			if minted, ok := tokens[tt.name]; ok {
				token = minted
			}
			if token != "" {
				require.NoError(t, store.SetToken(token))
			}

			assert.Equal(t, tt.want, store.Role())
		})
	}
}

func TestStore_Claims(t *testing.T) {
	store := newTestStore(t)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mintToken(t, jwt.MapClaims{
		"sub":      "admin1",
		"is_admin": true,
		"exp":      exp.Unix(),
	})
	require.NoError(t, store.SetToken(token))

	claims, ok := store.Claims()
	require.True(t, ok)
	assert.Equal(t, "admin1", claims.Subject)
	assert.True(t, claims.IsAdmin)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestStore_Claims_NoExpiry(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetToken(mintToken(t, jwt.MapClaims{"sub": "user1"})))

	claims, ok := store.Claims()
	require.True(t, ok)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestStore_PersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweetshop", "token")
	token := mintToken(t, jwt.MapClaims{"sub": "admin1", "is_admin": true})

	store := New(path)
	require.NoError(t, store.SetToken(token))

	// A fresh store reading the same file sees the same session.
	reloaded := New(path)
	require.NoError(t, reloaded.LoadFromDisk())

	got, ok := reloaded.Token()
	require.True(t, ok)
	assert.Equal(t, token, got)
	assert.Equal(t, RoleAdmin, reloaded.Role())
}

func TestStore_ClearRemovesPersistedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := New(path)

	require.NoError(t, store.SetToken(mintToken(t, jwt.MapClaims{"sub": "user1"})))
	require.NoError(t, store.SetToken(""))

	_, ok := store.Token()
	assert.False(t, ok)
	assert.Equal(t, RoleCustomer, store.Role())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "token file should be removed")

	// Clearing an already anonymous session is fine.
	require.NoError(t, store.Clear())
}

func TestStore_LoadFromDisk_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope", "token"))
	require.NoError(t, store.LoadFromDisk())

	_, ok := store.Token()
	assert.False(t, ok)
}

func TestStore_LoadFromDisk_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  abc.def.ghi\n"), 0600))

	store := New(path)
	require.NoError(t, store.LoadFromDisk())

	got, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", got)
}
