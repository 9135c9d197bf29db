// api/store/event_store.go
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"cardlink/api/database"
	"cardlink/api/models"
)

// EventStore is the ClickHouse-backed interaction event store: the write
// path for tracked events and the read path the aggregator pulls from.
type EventStore struct {
	DB *database.ClickHouseClient
}

// EventFilter selects raw events for an aggregation pass. ProfileID empty
// means every profile of the client.
type EventFilter struct {
	ClientID  string
	ProfileID string
	Start     time.Time
	End       time.Time
}

func NewEventStore(chClient *database.ClickHouseClient) *EventStore {
	return &EventStore{
		DB: chClient,
	}
}

func (s *EventStore) InsertEvents(ctx context.Context, events []models.RawEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column order must exactly match the interaction_events table schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO interaction_events (
			event_id, event_type, client_id, profile_id, ts, link_id, asset_type, asset_id,
			asset_label, source, utm_source, utm_medium, utm_campaign, utm_content, utm_term,
			referrer, landing_path, ip_address, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.Type,
			event.ClientID,
			event.ProfileID,
			event.TS.Time(),
			event.LinkID,
			event.AssetType,
			event.AssetID,
			event.AssetLabel,
			event.Source,
			event.UTM.Source,
			event.UTM.Medium,
			event.UTM.Campaign,
			event.UTM.Content,
			event.UTM.Term,
			event.Referrer,
			event.LandingPath,
			event.IPAddress,
			event.UserAgent,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	err = batch.Send()
	if err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Successfully inserted %d interaction events.", len(events))
	return nil
}

// FetchEvents returns the raw events matching the filter, oldest first.
// Rows that fail to scan are skipped, not fatal: one bad row must not take
// down a whole dashboard load.
func (s *EventStore) FetchEvents(ctx context.Context, filter EventFilter) ([]models.RawEvent, error) {
	query := `
		SELECT event_id, event_type, client_id, profile_id, ts, link_id, asset_type, asset_id,
			asset_label, source, utm_source, utm_medium, utm_campaign, utm_content, utm_term,
			referrer, landing_path
		FROM interaction_events
		WHERE client_id = ? AND ts >= ? AND ts <= ?
	`
	args := []interface{}{filter.ClientID, filter.Start, filter.End}

	if filter.ProfileID != "" {
		query += ` AND profile_id = ?`
		args = append(args, filter.ProfileID)
	}
	query += ` ORDER BY ts ASC`

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction events: %w", err)
	}
	defer rows.Close()

	var events []models.RawEvent
	for rows.Next() {
		var (
			event models.RawEvent
			ts    time.Time
		)
		if err := rows.Scan(
			&event.EventID,
			&event.Type,
			&event.ClientID,
			&event.ProfileID,
			&ts,
			&event.LinkID,
			&event.AssetType,
			&event.AssetID,
			&event.AssetLabel,
			&event.Source,
			&event.UTM.Source,
			&event.UTM.Medium,
			&event.UTM.Campaign,
			&event.UTM.Content,
			&event.UTM.Term,
			&event.Referrer,
			&event.LandingPath,
		); err != nil {
			log.Printf("Error scanning interaction event row: %v", err)
			continue
		}
		event.TS = models.FlexTime(ts.UnixMilli())
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during interaction event query: %w", err)
	}

	return events, nil
}
