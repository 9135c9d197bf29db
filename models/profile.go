// api/models/profile.go
package models

import "time"

// Button is a link button on a public profile page.
type Button struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// CatalogItem is a product entry in a profile's catalog section.
type CatalogItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PortfolioItem is an image entry in a profile's portfolio section.
type PortfolioItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoItem is an embedded video on a profile page.
type VideoItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Profile is a client's public business-card page together with the content
// collections the normalizer resolves asset labels from.
type Profile struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	DisplayName string    `json:"displayName"`
	Slug        string    `json:"slug,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	Buttons        []Button        `json:"buttons"`
	CatalogItems   []CatalogItem   `json:"catalogItems"`
	PortfolioItems []PortfolioItem `json:"portfolioItems"`
	Videos         []VideoItem     `json:"videos"`
}
