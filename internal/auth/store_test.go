package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/homebird-app/homebird/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, store.Token("42"), "fresh store starts anonymous")

	require.NoError(t, store.SetToken("42", "tok-abc"))
	assert.Equal(t, "tok-abc", store.Token("42"))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", reopened.Token("42"))

	require.NoError(t, reopened.ClearToken("42"))
	assert.Empty(t, reopened.Token("42"))
}

func TestLastWriterWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.SetToken("42", "first"))
	require.NoError(t, store.SetToken("42", "second"))
	assert.Equal(t, "second", store.Token("42"))
}

func TestProfileAndRatingDrafts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.SaveProfile("7", Profile{
		Name:               "Ada",
		DefaultServiceType: "plumbing",
		AutoRefresh:        true,
	}))
	require.NoError(t, store.SaveRatingDraft("7", "booking-1", 4))

	reopened, err := Open(path)
	require.NoError(t, err)
	profile := reopened.Profile("7")
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "plumbing", profile.DefaultServiceType)
	assert.True(t, profile.AutoRefresh)
	assert.Equal(t, 4, reopened.RatingDraft("7", "booking-1"))
	assert.Zero(t, reopened.RatingDraft("7", "booking-2"))
}

func TestStateFileIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("42", "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSaveRatingDraftRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.ErrorIs(t, store.SaveRatingDraft("7", "booking-1", 0), domain.ErrInvalidRating)
	require.ErrorIs(t, store.SaveRatingDraft("7", "booking-1", 6), domain.ErrInvalidRating)
	assert.Zero(t, store.RatingDraft("7", "booking-1"))
}

func TestAutoRefreshPreference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(path)
	require.NoError(t, err)

	assert.False(t, store.AutoRefresh("7"))
	require.NoError(t, store.SaveProfile("7", Profile{AutoRefresh: true}))
	assert.True(t, store.AutoRefresh("7"))
}
