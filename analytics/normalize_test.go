package analytics

import (
	"encoding/json"
	"testing"

	"cardlink/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiles() []models.Profile {
	return []models.Profile{
		{
			ID:          "P1",
			ClientID:    "C1",
			DisplayName: "Acme Studio",
			Buttons: []models.Button{
				{ID: "btn-42", Label: "WhatsApp", URL: "https://wa.me/5511999999999"},
				{ID: "btn-43", Label: "Instagram"},
				{ID: "btn-44", URL: "https://acme.example.com"},
			},
			CatalogItems: []models.CatalogItem{
				{ID: "cat-1", Title: "Corte Feminino"},
			},
			PortfolioItems: []models.PortfolioItem{
				{ID: "pf-1", Title: "Ensaio Externo"},
			},
			Videos: []models.VideoItem{
				{ID: "vid-1", Title: "Tour do Studio"},
			},
		},
		{
			ID:          "P2",
			ClientID:    "C1",
			DisplayName: "Acme Dois",
		},
	}
}

func TestNormalizeEventPixClassification(t *testing.T) {
	t.Run("ByType", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypePixCopied,
			ProfileID: "P1",
		}, testProfiles())

		assert.Equal(t, models.AssetTypePix, normalized.AssetType)
		assert.Equal(t, "pix", normalized.AssetID)
		assert.Equal(t, "Chave Pix", normalized.AssetLabel)
	})

	t.Run("WinsRegardlessOfOtherFields", func(t *testing.T) {
		// Even with a linkId and a tagged asset present, PIX takes priority.
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypePixCopied,
			ProfileID: "P1",
			LinkID:    "btn-42",
			AssetType: models.AssetTypeButton,
			AssetID:   "btn-42",
		}, testProfiles())

		assert.Equal(t, models.AssetTypePix, normalized.AssetType)
		assert.Equal(t, "pix", normalized.AssetID)
	})

	t.Run("LegacyAssetTypeAlias", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeClick,
			ProfileID: "P1",
			AssetType: "pix",
		}, testProfiles())

		assert.Equal(t, models.AssetTypePix, normalized.AssetType)
		assert.Equal(t, "Chave Pix", normalized.AssetLabel)
	})
}

func TestNormalizeEventButtonClassification(t *testing.T) {
	t.Run("ResolvesLabelFromProfile", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeClick,
			ProfileID: "P1",
			LinkID:    "btn-42",
		}, testProfiles())

		assert.Equal(t, models.AssetTypeButton, normalized.AssetType)
		assert.Equal(t, "btn-42", normalized.AssetID)
		assert.Equal(t, "WhatsApp", normalized.AssetLabel)
	})

	t.Run("MissingButtonGetsRemovedPlaceholder", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeClick,
			ProfileID: "P1",
			LinkID:    "btn-missing",
		}, testProfiles())

		assert.Equal(t, models.AssetTypeButton, normalized.AssetType)
		assert.Equal(t, "Link Removido", normalized.AssetLabel)
	})

	t.Run("UnknownProfileGetsRemovedPlaceholder", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeClick,
			ProfileID: "P-nope",
			LinkID:    "btn-42",
		}, testProfiles())

		assert.Equal(t, "Link Removido", normalized.AssetLabel)
	})

	t.Run("UnlabeledButtonFallsBackToURL", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeClick,
			ProfileID: "P1",
			LinkID:    "btn-44",
		}, testProfiles())

		assert.Equal(t, "https://acme.example.com", normalized.AssetLabel)
	})
}

func TestNormalizeEventTaggedPassthrough(t *testing.T) {
	t.Run("KeepsExistingLabel", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:       models.EventTypeCatalogZoom,
			ProfileID:  "P1",
			AssetType:  models.AssetTypeCatalog,
			AssetID:    "cat-1",
			AssetLabel: "Corte Premium",
		}, testProfiles())

		assert.Equal(t, models.AssetTypeCatalog, normalized.AssetType)
		assert.Equal(t, "cat-1", normalized.AssetID)
		assert.Equal(t, "Corte Premium", normalized.AssetLabel)
	})

	t.Run("ResolvesMissingLabel", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypeCatalogZoom,
			ProfileID: "P1",
			AssetType: models.AssetTypeCatalog,
			AssetID:   "cat-1",
		}, testProfiles())

		assert.Equal(t, "Corte Feminino", normalized.AssetLabel)
	})

	t.Run("ResolvesRawIDLabel", func(t *testing.T) {
		// Some producers echo the ID back as the label.
		normalized := NormalizeEvent(models.RawEvent{
			Type:       models.EventTypeVideoView,
			ProfileID:  "P1",
			AssetType:  models.AssetTypeVideo,
			AssetID:    "vid-1",
			AssetLabel: "vid-1",
		}, testProfiles())

		assert.Equal(t, "Tour do Studio", normalized.AssetLabel)
	})

	t.Run("UnresolvableKeepsIDAsLabel", func(t *testing.T) {
		normalized := NormalizeEvent(models.RawEvent{
			Type:      models.EventTypePortfolioClick,
			ProfileID: "P1",
			AssetType: models.AssetTypePortfolio,
			AssetID:   "pf-gone",
		}, testProfiles())

		assert.Equal(t, models.AssetTypePortfolio, normalized.AssetType)
		assert.Equal(t, "pf-gone", normalized.AssetLabel)
	})
}

func TestNormalizeEventNoAsset(t *testing.T) {
	normalized := NormalizeEvent(models.RawEvent{
		Type:      models.EventTypeView,
		ProfileID: "P1",
		Source:    "instagram.com",
	}, testProfiles())

	assert.Empty(t, normalized.AssetType)
	assert.Empty(t, normalized.AssetID)
	assert.Empty(t, normalized.AssetLabel)
	assert.Equal(t, "instagram.com", normalized.Source)
}

func TestNormalizeEventIdempotent(t *testing.T) {
	raws := []models.RawEvent{
		{Type: models.EventTypePixCopied, ProfileID: "P1"},
		{Type: models.EventTypeClick, ProfileID: "P1", LinkID: "btn-42"},
		{Type: models.EventTypeCatalogZoom, ProfileID: "P1", AssetType: models.AssetTypeCatalog, AssetID: "cat-1"},
		{Type: models.EventTypeView, ProfileID: "P1"},
	}

	for _, raw := range raws {
		first := NormalizeEvent(raw, testProfiles())

		// Re-normalizing the already-normalized shape keeps the
		// classification stable.
		again := NormalizeEvent(models.RawEvent{
			EventID:    first.ID,
			Type:       first.Type,
			ClientID:   first.ClientID,
			ProfileID:  first.ProfileID,
			AssetType:  first.AssetType,
			AssetID:    first.AssetID,
			AssetLabel: first.AssetLabel,
			Source:     first.Source,
			UTM:        first.UTM,
			TS:         models.FlexTime(first.TS),
		}, testProfiles())

		assert.Equal(t, first.AssetType, again.AssetType, "type %s", raw.Type)
		assert.Equal(t, first.AssetID, again.AssetID, "type %s", raw.Type)
	}
}

func TestNormalizeEventTimestampCoercion(t *testing.T) {
	t.Run("EpochMillis", func(t *testing.T) {
		var raw models.RawEvent
		require.NoError(t, json.Unmarshal([]byte(`{"type":"view","ts":1742040000000}`), &raw))

		normalized := NormalizeEvent(raw, nil)
		assert.Equal(t, int64(1742040000000), normalized.TS)
	})

	t.Run("RFC3339String", func(t *testing.T) {
		var raw models.RawEvent
		require.NoError(t, json.Unmarshal([]byte(`{"type":"view","ts":"2025-03-15T12:00:00Z"}`), &raw))

		normalized := NormalizeEvent(raw, nil)
		assert.Equal(t, int64(1742040000000), normalized.TS)
	})

	t.Run("MalformedStringDegradesToZero", func(t *testing.T) {
		var raw models.RawEvent
		require.NoError(t, json.Unmarshal([]byte(`{"type":"view","ts":"yesterday"}`), &raw))

		normalized := NormalizeEvent(raw, nil)
		assert.Zero(t, normalized.TS)
	})
}
