// api/analytics/origin.go
package analytics

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"cardlink/api/models"
)

// OriginTTL is how long a captured session origin stays live. A visitor
// returning after this window counts as a fresh acquisition.
const OriginTTL = 7 * 24 * time.Hour

const directSource = "direct"

// OriginStore is the durable per-session slot the capture stage writes to.
// Get returns an empty string when no value is stored for the key.
type OriginStore interface {
	Get(ctx context.Context, sessionKey string) (string, error)
	Set(ctx context.Context, sessionKey, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionKey string) error
}

// CaptureOrigin derives the acquisition context for a page load.
// Source resolution order: utm_source, then the explicit src tag (qr, nfc),
// then an external referrer's hostname, then "direct". UTM values are
// passed through as opaque strings, malformed or not.
func CaptureOrigin(query url.Values, referrer, landingPath, pageHost string, now time.Time) models.SessionOrigin {
	utm := models.UTMParams{
		Source:   query.Get("utm_source"),
		Medium:   query.Get("utm_medium"),
		Campaign: query.Get("utm_campaign"),
		Content:  query.Get("utm_content"),
		Term:     query.Get("utm_term"),
	}

	source := directSource
	switch {
	case utm.Source != "":
		source = utm.Source
	case query.Get("src") != "":
		source = query.Get("src")
	case referrer != "":
		source = referrerSource(referrer, pageHost)
	}

	return models.SessionOrigin{
		Source:      source,
		UTM:         utm,
		Referrer:    referrer,
		LandingPath: landingPath,
		TS:          now.UnixMilli(),
	}
}

// referrerSource extracts the referrer hostname. An unparseable referrer
// still counts as referred traffic under the literal "referrer" bucket; a
// same-host referrer is internal navigation and counts as direct.
func referrerSource(referrer, pageHost string) string {
	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return "referrer"
	}
	if pageHost != "" && strings.EqualFold(u.Hostname(), pageHost) {
		return directSource
	}
	return u.Hostname()
}

// Origins applies the capture and lazy-expiry rules on top of an
// OriginStore. At most one origin is live per session key; repeated
// captures overwrite.
type Origins struct {
	store OriginStore
	now   func() time.Time
}

func NewOrigins(store OriginStore) *Origins {
	return &Origins{store: store, now: time.Now}
}

// Capture derives and persists the origin for the session, overwriting any
// prior value.
func (o *Origins) Capture(ctx context.Context, sessionKey string, query url.Values, referrer, landingPath, pageHost string) (models.SessionOrigin, error) {
	origin := CaptureOrigin(query, referrer, landingPath, pageHost, o.now())
	raw, err := json.Marshal(origin)
	if err != nil {
		return origin, err
	}
	if err := o.store.Set(ctx, sessionKey, string(raw), OriginTTL); err != nil {
		return origin, err
	}
	return origin, nil
}

// Get returns the live origin for the session, or nil when none is stored,
// the stored value is unparseable, or it is older than OriginTTL. Expiry is
// checked from the stored capture timestamp so it holds even if the backing
// store never evicts.
func (o *Origins) Get(ctx context.Context, sessionKey string) (*models.SessionOrigin, error) {
	raw, err := o.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var origin models.SessionOrigin
	if err := json.Unmarshal([]byte(raw), &origin); err != nil {
		return nil, nil
	}

	if o.now().Sub(time.UnixMilli(origin.TS)) > OriginTTL {
		_ = o.store.Delete(ctx, sessionKey)
		return nil, nil
	}
	return &origin, nil
}

// MemoryOriginStore is an in-process OriginStore for tests and single-node
// development. TTL enforcement is left to the lazy check in Origins.Get.
type MemoryOriginStore struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemoryOriginStore() *MemoryOriginStore {
	return &MemoryOriginStore{slots: make(map[string]string)}
}

func (s *MemoryOriginStore) Get(_ context.Context, sessionKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[sessionKey], nil
}

func (s *MemoryOriginStore) Set(_ context.Context, sessionKey, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[sessionKey] = value
	return nil
}

func (s *MemoryOriginStore) Delete(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sessionKey)
	return nil
}
