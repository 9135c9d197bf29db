// api/analytics/normalize.go
package analytics

import (
	"cardlink/api/models"
	"cardlink/api/utils"
)

// classification is the asset attribution a rule derived for an event.
type classification struct {
	assetType  string
	assetID    string
	assetLabel string
}

// classifyRule inspects a raw event and either claims it or passes.
// Rules run in order; the first match wins. New producer formats get a new
// rule instead of edits to existing ones.
type classifyRule func(raw models.RawEvent, content contentIndex) (classification, bool)

var classifyRules = []classifyRule{
	classifyPix,
	classifyButton,
	classifyTagged,
}

// NormalizeEvent maps a heterogeneous raw event into the canonical shape,
// resolving asset labels from the profile content catalog. It never fails:
// lookup misses degrade to placeholder labels and unclassifiable events
// simply carry no asset attribution.
func NormalizeEvent(raw models.RawEvent, profiles []models.Profile) models.NormalizedEvent {
	normalized := models.NormalizedEvent{
		ID:        raw.EventID,
		ClientID:  raw.ClientID,
		ProfileID: raw.ProfileID,
		Type:      raw.Type,
		Source:    raw.Source,
		UTM:       raw.UTM,
		TS:        int64(raw.TS),
	}

	content := contentIndex{profiles: profiles}
	for _, rule := range classifyRules {
		if cls, ok := rule(raw, content); ok {
			normalized.AssetType = cls.assetType
			normalized.AssetID = cls.assetID
			normalized.AssetLabel = cls.assetLabel
			break
		}
	}
	return normalized
}

// NormalizeEvents normalizes a batch against one catalog snapshot.
func NormalizeEvents(raws []models.RawEvent, profiles []models.Profile) []models.NormalizedEvent {
	normalized := make([]models.NormalizedEvent, 0, len(raws))
	for _, raw := range raws {
		normalized = append(normalized, NormalizeEvent(raw, profiles))
	}
	return normalized
}

// classifyPix claims PIX copy events, including the legacy shape that only
// tagged asset_type. PIX has no per-item identity, so the asset ID and
// label are fixed.
func classifyPix(raw models.RawEvent, _ contentIndex) (classification, bool) {
	if raw.Type != models.EventTypePixCopied && raw.AssetType != models.AssetTypePix {
		return classification{}, false
	}
	return classification{
		assetType:  models.AssetTypePix,
		assetID:    models.PixAssetID,
		assetLabel: models.PixAssetLabel,
	}, true
}

// classifyButton claims events from the original tracking calls, which only
// carried a linkId. The label comes from the owning profile's buttons; a
// miss means the button was deleted since the click.
func classifyButton(raw models.RawEvent, content contentIndex) (classification, bool) {
	if raw.LinkID == "" {
		return classification{}, false
	}
	label, ok := content.buttonLabel(raw.ProfileID, raw.LinkID)
	if !ok {
		label = models.RemovedLinkLabel
	}
	return classification{
		assetType:  models.AssetTypeButton,
		assetID:    raw.LinkID,
		assetLabel: label,
	}, true
}

// classifyTagged claims events from newer producers that already carry an
// assetType/assetId pair. The pair passes through, but the label is
// re-resolved when it is missing or is just the raw ID echoed back.
func classifyTagged(raw models.RawEvent, content contentIndex) (classification, bool) {
	if raw.AssetType == "" || raw.AssetID == "" {
		return classification{}, false
	}
	label := raw.AssetLabel
	if label == "" || label == raw.AssetID {
		if resolved, ok := content.assetLabel(raw.ProfileID, raw.AssetType, raw.AssetID); ok {
			label = resolved
		}
	}
	return classification{
		assetType:  raw.AssetType,
		assetID:    raw.AssetID,
		assetLabel: utils.FirstNonEmpty(label, raw.AssetID),
	}, true
}

// contentIndex resolves labels from the profile content collections.
type contentIndex struct {
	profiles []models.Profile
}

func (c contentIndex) profile(profileID string) (models.Profile, bool) {
	for _, p := range c.profiles {
		if p.ID == profileID {
			return p, true
		}
	}
	return models.Profile{}, false
}

func (c contentIndex) buttonLabel(profileID, buttonID string) (string, bool) {
	profile, ok := c.profile(profileID)
	if !ok {
		return "", false
	}
	for _, b := range profile.Buttons {
		if b.ID == buttonID {
			return utils.FirstNonEmpty(b.Label, b.URL), true
		}
	}
	return "", false
}

func (c contentIndex) assetLabel(profileID, assetType, assetID string) (string, bool) {
	profile, ok := c.profile(profileID)
	if !ok {
		return "", false
	}
	switch assetType {
	case models.AssetTypeButton:
		return c.buttonLabel(profileID, assetID)
	case models.AssetTypeCatalog:
		for _, item := range profile.CatalogItems {
			if item.ID == assetID {
				return item.Title, true
			}
		}
	case models.AssetTypePortfolio:
		for _, item := range profile.PortfolioItems {
			if item.ID == assetID {
				return item.Title, true
			}
		}
	case models.AssetTypeVideo:
		for _, item := range profile.Videos {
			if item.ID == assetID {
				return item.Title, true
			}
		}
	}
	return "", false
}
