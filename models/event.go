// api/models/event.go
package models

import (
	"encoding/json"
	"time"
)

// Event types produced by the public profile pages. Older tracking calls
// only ever send view/click; the rest came with newer page features.
const (
	EventTypeView            = "view"
	EventTypeClick           = "click"
	EventTypeLeadCapture     = "lead_capture"
	EventTypeNPSResponse     = "nps_response"
	EventTypePixCopied       = "pix_copied"
	EventTypeCatalogZoom     = "catalog_zoom"
	EventTypeCatalogCTAClick = "catalog_cta_click"
	EventTypePortfolioClick  = "portfolio_click"
	EventTypeVideoView       = "video_view"
)

// Asset types an event can be attributed to. Empty string means the event
// has no associated content (pure view/navigation).
const (
	AssetTypeButton    = "button"
	AssetTypeCatalog   = "catalog"
	AssetTypePortfolio = "portfolio"
	AssetTypeVideo     = "video"
	AssetTypePix       = "pix"
	AssetTypeForm      = "form"
)

// PIX has no per-click identity, so every PIX event shares one synthetic
// asset ID and a fixed label.
const (
	PixAssetID    = "pix"
	PixAssetLabel = "Chave Pix"
)

// RemovedLinkLabel is used when a click references a button that no longer
// exists in the profile.
const RemovedLinkLabel = "Link Removido"

// UTMParams carries the marketing attribution query parameters.
type UTMParams struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Content  string `json:"content,omitempty"`
	Term     string `json:"term,omitempty"`
}

// FlexTime is an epoch-milliseconds timestamp that also accepts RFC3339
// strings on the wire, because older tracking clients send ISO dates.
// Malformed values decode to zero instead of failing the whole batch.
type FlexTime int64

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*t = 0
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			*t = 0
			return nil
		}
		*t = FlexTime(parsed.UnixMilli())
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			*t = 0
			return nil
		}
		n = int64(f)
	}
	*t = FlexTime(n)
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

// Time converts the timestamp to a time.Time.
func (t FlexTime) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// RawEvent is a single interaction record as sent by the profile pages.
// Different tracking-script versions populate different optional subsets;
// only the normalizer should reason about which fields are present.
type RawEvent struct {
	EventID     string    `json:"eventId,omitempty"`
	Type        string    `json:"type" binding:"required"`
	ClientID    string    `json:"clientId"`
	ProfileID   string    `json:"profileId"`
	TS          FlexTime  `json:"ts"`
	LinkID      string    `json:"linkId,omitempty"`
	AssetType   string    `json:"assetType,omitempty"`
	AssetID     string    `json:"assetId,omitempty"`
	AssetLabel  string    `json:"assetLabel,omitempty"`
	Source      string    `json:"source,omitempty"`
	UTM         UTMParams `json:"utm,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	LandingPath string    `json:"landingPath,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}

// NormalizedEvent is the canonical projection of a RawEvent used by the
// aggregator. Derived on every pass, never persisted.
type NormalizedEvent struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	ProfileID  string    `json:"profileId"`
	Type       string    `json:"type"`
	AssetType  string    `json:"assetType,omitempty"`
	AssetID    string    `json:"assetId,omitempty"`
	AssetLabel string    `json:"assetLabel,omitempty"`
	Source     string    `json:"source,omitempty"`
	UTM        UTMParams `json:"utm,omitempty"`
	TS         int64     `json:"ts"`
}

// SessionOrigin is the acquisition context captured once per visitor
// session: where the visit came from and which UTM tags it carried.
type SessionOrigin struct {
	Source      string    `json:"source"`
	UTM         UTMParams `json:"utm,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	LandingPath string    `json:"landingPath,omitempty"`
	TS          int64     `json:"ts"`
}
