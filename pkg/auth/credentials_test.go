package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptedStore(t *testing.T) *EncryptedFileStore {
	t.Setenv("XSCRAPER_PASSPHRASE", "test-passphrase")
	store, err := NewEncryptedFileStore(filepath.Join(t.TempDir(), "credentials.enc"))
	require.NoError(t, err)
	return store
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	store := newTestEncryptedStore(t)

	account := &Account{
		Username: "some_user",
		Password: "hunter2-but-longer",
		Email:    "some@example.com",
	}
	require.NoError(t, store.Store(account))

	got, err := store.Retrieve("some_user")
	require.NoError(t, err)
	assert.Equal(t, account.Username, got.Username)
	assert.Equal(t, account.Password, got.Password)
	assert.Equal(t, account.Email, got.Email)

	assert.True(t, store.Exists("some_user"))
	assert.False(t, store.Exists("other_user"))
}

func TestEncryptedStoreFileIsOpaque(t *testing.T) {
	t.Setenv("XSCRAPER_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Account{
		Username: "some_user",
		Password: "super-secret-password",
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-password")
	assert.NotContains(t, string(raw), "some_user")
}

func TestEncryptedStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("XSCRAPER_PASSPHRASE", "first-passphrase")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Username: "some_user", Password: "secret"}))

	t.Setenv("XSCRAPER_PASSPHRASE", "wrong-passphrase")
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = reopened.Retrieve("some_user")
	require.Error(t, err)
}

func TestEncryptedStoreDelete(t *testing.T) {
	store := newTestEncryptedStore(t)

	require.NoError(t, store.Store(&Account{Username: "a_user", Password: "secret-a"}))
	require.NoError(t, store.Store(&Account{Username: "b_user", Password: "secret-b"}))

	require.NoError(t, store.Delete("a_user"))
	assert.False(t, store.Exists("a_user"))
	assert.True(t, store.Exists("b_user"))

	assert.ErrorIs(t, store.Delete("a_user"), ErrCredentialsNotFound)

	// Deleting the last account removes the file entirely.
	require.NoError(t, store.Delete("b_user"))
	_, err := os.Stat(store.filepath)
	assert.True(t, os.IsNotExist(err))
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("XSCRAPER_USERNAME", "env_user")
	t.Setenv("XSCRAPER_PASSWORD", "env_password")
	t.Setenv("XSCRAPER_EMAIL", "env@example.com")

	store := NewEnvironmentStore()
	assert.True(t, store.Exists("env_user"))

	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env_user", account.Username)
	assert.Equal(t, "env_password", account.Password)
	assert.Equal(t, "env@example.com", account.Email)

	_, err = store.Retrieve("other_user")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	assert.ErrorIs(t, store.Store(&Account{Username: "x"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("env_user"), ErrStoreUnavailable)
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("XSCRAPER_USERNAME", "")
	t.Setenv("XSCRAPER_PASSWORD", "")

	store := NewEnvironmentStore()
	assert.False(t, store.Exists(""))

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestSanitizeAccount(t *testing.T) {
	masked := SanitizeAccount(&Account{
		Username: "some_user",
		Password: "a-very-long-password",
		Email:    "some@example.com",
	})

	assert.Equal(t, "some_user", masked.Username)
	assert.Equal(t, "a-ve...word", masked.Password)
	assert.Equal(t, "some@example.com", masked.Email)

	short := SanitizeAccount(&Account{Username: "u", Password: "short"})
	assert.Equal(t, "********", short.Password)

	assert.Nil(t, SanitizeAccount(nil))
}
