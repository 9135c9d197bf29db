// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cardlink/api/analytics"
	"cardlink/api/models"
	"cardlink/api/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionCookie carries the visitor's session key the origin slot is keyed
// by.
const sessionCookie = "cl_session"

type AnalyticsHandlers struct {
	Events   *store.EventStore
	Profiles *store.ProfileStore
	Origins  *analytics.Origins
}

func NewAnalyticsHandlers(events *store.EventStore, profiles *store.ProfileStore, origins *analytics.Origins) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Events:   events,
		Profiles: profiles,
		Origins:  origins,
	}
}

// sessionKey returns the visitor's session key, minting one when absent.
func (h *AnalyticsHandlers) sessionKey(c *gin.Context) string {
	key, err := c.Cookie(sessionCookie)
	if err != nil || key == "" {
		key = uuid.New().String()
		c.SetCookie(sessionCookie, key, int(analytics.OriginTTL/time.Second), "/", "", false, true)
	}
	return key
}

type captureOriginRequest struct {
	PageURL  string `json:"pageUrl" binding:"required"`
	Referrer string `json:"referrer"`
}

// CaptureOrigin derives and persists the acquisition context for the
// calling session from the landing page URL and referrer. Repeated calls
// overwrite: last write wins across tabs, which is fine for best-effort
// attribution.
func (h *AnalyticsHandlers) CaptureOrigin(c *gin.Context) {
	var req captureOriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pageURL, err := url.Parse(req.PageURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pageUrl"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	origin, err := h.Origins.Capture(ctx, h.sessionKey(c), pageURL.Query(), req.Referrer, pageURL.Path, pageURL.Hostname())
	if err != nil {
		log.Printf("Error persisting session origin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record session origin"})
		return
	}

	c.JSON(http.StatusOK, origin)
}

// GetOrigin returns the live session origin, or 204 when none is live
// (never captured, expired, or unreadable).
func (h *AnalyticsHandlers) GetOrigin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	origin, err := h.Origins.Get(ctx, h.sessionKey(c))
	if err != nil {
		log.Printf("Error reading session origin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read session origin"})
		return
	}
	if origin == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, origin)
}

// TrackEvent records a batch of interaction events. Missing source/UTM
// fields are filled from the caller's live session origin. Storage failures
// are logged, never surfaced: tracking must not break the interaction that
// triggered it, so the response is 202 regardless.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var incomingEvents []models.RawEvent
	if err := c.ShouldBindJSON(&incomingEvents); err != nil {
		log.Printf("Error binding incoming event JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incomingEvents) == 0 {
		c.Status(http.StatusAccepted)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	origin, err := h.Origins.Get(ctx, h.sessionKey(c))
	if err != nil {
		log.Printf("Error reading session origin during track: %v", err)
		origin = nil // attribution is best-effort
	}

	eventsToInsert := make([]models.RawEvent, 0, len(incomingEvents))
	for _, event := range incomingEvents {
		event.EventID = uuid.New().String()
		event.IPAddress = c.ClientIP()
		if event.TS == 0 {
			event.TS = models.FlexTime(time.Now().UnixMilli())
		}
		if origin != nil {
			if event.Source == "" {
				event.Source = origin.Source
			}
			if event.UTM == (models.UTMParams{}) {
				event.UTM = origin.UTM
			}
			if event.Referrer == "" {
				event.Referrer = origin.Referrer
			}
			if event.LandingPath == "" {
				event.LandingPath = origin.LandingPath
			}
		}
		eventsToInsert = append(eventsToInsert, event)
	}

	if err := h.Events.InsertEvents(ctx, eventsToInsert); err != nil {
		log.Printf("Error inserting interaction events into ClickHouse: %v", err)
	}

	c.Status(http.StatusAccepted)
}

// GetProfileSummary computes the dashboard summary for one profile or all
// of the client's profiles, over a trailing number of days or an explicit
// RFC3339 start/end range (the explicit range wins).
func (h *AnalyticsHandlers) GetProfileSummary(c *gin.Context) {
	clientID := strconv.Itoa(c.MustGet("client_id").(int))

	profileID := c.Query("profileId")
	if profileID == "" {
		profileID = analytics.AllProfiles
	}

	days := 7
	if daysParam := c.Query("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'days' parameter. Must be a positive integer."})
			return
		}
		days = parsed
	}

	now := time.Now()
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	end := now
	explicitRange := false

	startParam := c.Query("start")
	endParam := c.Query("end")
	if startParam != "" && endParam != "" {
		var err error
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return
		}
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return
		}
		explicitRange = true
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := store.EventFilter{
		ClientID: clientID,
		Start:    start,
		End:      end,
	}
	if profileID != analytics.AllProfiles {
		filter.ProfileID = profileID
	}

	rawEvents, err := h.Events.FetchEvents(ctx, filter)
	if err != nil {
		log.Printf("Error fetching interaction events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}

	profiles, err := h.Profiles.GetProfilesWithContent(ctx, clientID)
	if err != nil {
		log.Printf("Error fetching profiles for client %s: %v", clientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile catalog"})
		return
	}

	opts := analytics.Options{
		ProfileID: profileID,
		Days:      days,
		Now:       now,
	}
	if explicitRange {
		opts.StartTS = start.UnixMilli()
		opts.EndTS = end.UnixMilli()
	}

	summary := analytics.Summarize(analytics.NormalizeEvents(rawEvents, profiles), opts)
	c.JSON(http.StatusOK, summary)
}

// ListProfiles returns the client's profiles with their content
// collections, for dashboard label lookups.
func (h *AnalyticsHandlers) ListProfiles(c *gin.Context) {
	clientID := strconv.Itoa(c.MustGet("client_id").(int))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	profiles, err := h.Profiles.GetProfilesWithContent(ctx, clientID)
	if err != nil {
		log.Printf("Error fetching profiles for client %s: %v", clientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profiles"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}
