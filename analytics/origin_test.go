package analytics

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureOriginSourcePriority(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("UTMSourceWinsOverSrcTag", func(t *testing.T) {
		query := url.Values{}
		query.Set("utm_source", "ads")
		query.Set("src", "qr")

		origin := CaptureOrigin(query, "", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "ads", origin.Source)
		assert.Equal(t, "ads", origin.UTM.Source)
	})

	t.Run("SrcTagWinsOverReferrer", func(t *testing.T) {
		query := url.Values{}
		query.Set("src", "nfc")

		origin := CaptureOrigin(query, "https://instagram.com/some/post", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "nfc", origin.Source)
	})

	t.Run("ExternalReferrerHostname", func(t *testing.T) {
		origin := CaptureOrigin(url.Values{}, "https://instagram.com/some/post", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "instagram.com", origin.Source)
		assert.Equal(t, "https://instagram.com/some/post", origin.Referrer)
	})

	t.Run("SameHostReferrerIsDirect", func(t *testing.T) {
		origin := CaptureOrigin(url.Values{}, "https://cardlink.app/p/other", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "direct", origin.Source)
	})

	t.Run("UnparseableReferrerFallsBack", func(t *testing.T) {
		origin := CaptureOrigin(url.Values{}, "http://bad url", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "referrer", origin.Source)
	})

	t.Run("ReferrerWithoutHostnameFallsBack", func(t *testing.T) {
		origin := CaptureOrigin(url.Values{}, "not-a-url", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "referrer", origin.Source)
	})

	t.Run("NothingMeansDirect", func(t *testing.T) {
		origin := CaptureOrigin(url.Values{}, "", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "direct", origin.Source)
	})

	t.Run("AllUTMParamsCaptured", func(t *testing.T) {
		query := url.Values{}
		query.Set("utm_source", "newsletter")
		query.Set("utm_medium", "email")
		query.Set("utm_campaign", "march")
		query.Set("utm_content", "cta-top")
		query.Set("utm_term", "cartao digital")

		origin := CaptureOrigin(query, "", "/p/acme", "cardlink.app", now)
		assert.Equal(t, "newsletter", origin.UTM.Source)
		assert.Equal(t, "email", origin.UTM.Medium)
		assert.Equal(t, "march", origin.UTM.Campaign)
		assert.Equal(t, "cta-top", origin.UTM.Content)
		assert.Equal(t, "cartao digital", origin.UTM.Term)
		assert.Equal(t, now.UnixMilli(), origin.TS)
	})
}

func TestOriginsCaptureAndGet(t *testing.T) {
	ctx := context.Background()
	origins := NewOrigins(NewMemoryOriginStore())

	query := url.Values{}
	query.Set("src", "qr")

	captured, err := origins.Capture(ctx, "session-1", query, "", "/p/acme", "cardlink.app")
	require.NoError(t, err)
	assert.Equal(t, "qr", captured.Source)

	live, err := origins.Get(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, "qr", live.Source)

	// Other sessions see nothing.
	other, err := origins.Get(ctx, "session-2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestOriginsRepeatedCaptureOverwrites(t *testing.T) {
	ctx := context.Background()
	origins := NewOrigins(NewMemoryOriginStore())

	first := url.Values{}
	first.Set("src", "qr")
	_, err := origins.Capture(ctx, "session-1", first, "", "/p/acme", "cardlink.app")
	require.NoError(t, err)

	second := url.Values{}
	second.Set("utm_source", "ads")
	_, err = origins.Capture(ctx, "session-1", second, "", "/p/acme", "cardlink.app")
	require.NoError(t, err)

	live, err := origins.Get(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, "ads", live.Source)
}

func TestOriginsLazyExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOriginStore()
	origins := NewOrigins(store)

	captureTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	origins.now = func() time.Time { return captureTime }

	query := url.Values{}
	query.Set("src", "qr")
	_, err := origins.Capture(ctx, "session-1", query, "", "/p/acme", "cardlink.app")
	require.NoError(t, err)

	// Just inside the window: still live.
	origins.now = func() time.Time { return captureTime.Add(OriginTTL - time.Minute) }
	live, err := origins.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.NotNil(t, live)

	// Eight days later: treated as absent and deleted.
	origins.now = func() time.Time { return captureTime.Add(8 * 24 * time.Hour) }
	live, err = origins.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, live)

	stored, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, stored, "expired slot should have been deleted")
}

func TestOriginsUnparseableSlotReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOriginStore()
	origins := NewOrigins(store)

	require.NoError(t, store.Set(ctx, "session-1", "{not json", OriginTTL))

	live, err := origins.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, live)
}
