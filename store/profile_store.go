// api/store/profile_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"

	"cardlink/api/models"
)

// ProfileStore loads a client's profiles together with the content
// collections (buttons, catalog, portfolio, videos) the normalizer resolves
// asset labels from.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetProfilesWithContent returns every profile owned by the client, each
// with its content items attached.
func (s *ProfileStore) GetProfilesWithContent(ctx context.Context, clientID string) ([]models.Profile, error) {
	query := `
		SELECT id, client_id, display_name, slug, created_at
		FROM profiles
		WHERE client_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.ClientID, &p.DisplayName, &p.Slug, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during profile query: %w", err)
	}

	for i := range profiles {
		if err := s.loadContent(ctx, &profiles[i]); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

func (s *ProfileStore) loadContent(ctx context.Context, profile *models.Profile) error {
	if err := s.loadButtons(ctx, profile); err != nil {
		return err
	}
	if err := s.loadCatalogItems(ctx, profile); err != nil {
		return err
	}
	if err := s.loadPortfolioItems(ctx, profile); err != nil {
		return err
	}
	return s.loadVideos(ctx, profile)
}

func (s *ProfileStore) loadButtons(ctx context.Context, profile *models.Profile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, url FROM profile_buttons WHERE profile_id = $1 ORDER BY position ASC;
	`, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to query buttons for profile %s: %w", profile.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.Button
		if err := rows.Scan(&b.ID, &b.Label, &b.URL); err != nil {
			return fmt.Errorf("failed to scan button: %w", err)
		}
		profile.Buttons = append(profile.Buttons, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row error during button query: %w", err)
	}
	return nil
}

func (s *ProfileStore) loadCatalogItems(ctx context.Context, profile *models.Profile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title FROM catalog_items WHERE profile_id = $1 ORDER BY position ASC;
	`, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to query catalog items for profile %s: %w", profile.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return fmt.Errorf("failed to scan catalog item: %w", err)
		}
		profile.CatalogItems = append(profile.CatalogItems, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row error during catalog item query: %w", err)
	}
	return nil
}

func (s *ProfileStore) loadPortfolioItems(ctx context.Context, profile *models.Profile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title FROM portfolio_items WHERE profile_id = $1 ORDER BY position ASC;
	`, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to query portfolio items for profile %s: %w", profile.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PortfolioItem
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return fmt.Errorf("failed to scan portfolio item: %w", err)
		}
		profile.PortfolioItems = append(profile.PortfolioItems, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row error during portfolio item query: %w", err)
	}
	return nil
}

func (s *ProfileStore) loadVideos(ctx context.Context, profile *models.Profile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title FROM profile_videos WHERE profile_id = $1 ORDER BY position ASC;
	`, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to query videos for profile %s: %w", profile.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.VideoItem
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return fmt.Errorf("failed to scan video: %w", err)
		}
		profile.Videos = append(profile.Videos, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row error during video query: %w", err)
	}
	return nil
}
