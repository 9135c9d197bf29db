// api/analytics/summary.go
package analytics

import (
	"sort"
	"time"

	"cardlink/api/models"
	"cardlink/api/utils"
)

// AllProfiles selects every profile the caller owns instead of one.
const AllProfiles = "all"

const (
	defaultDays = 7
	topLinksCap = 5
	utmListCap  = 5
	dayMillis   = 24 * 60 * 60 * 1000
)

// clickEquivalents are the engagement types counted toward totalClicks and
// CTR. topLinks ranks plain button clicks only, since its labels are button
// labels.
var clickEquivalents = map[string]bool{
	models.EventTypeClick:           true,
	models.EventTypeCatalogCTAClick: true,
	models.EventTypePortfolioClick:  true,
}

// Options selects which events Summarize aggregates and how they are
// bucketed.
type Options struct {
	// ProfileID filters to one profile, or AllProfiles for every profile in
	// the event set.
	ProfileID string
	// Days is the trailing window length. Ignored when StartTS and EndTS
	// are both set.
	Days int
	// StartTS/EndTS are an explicit range in epoch millis; when set they
	// take precedence over Days.
	StartTS int64
	EndTS   int64
	// Now anchors the trailing window; zero means time.Now().
	Now time.Time
	// Location is the zone daily and hourly buckets are computed in; nil
	// means time.Local (the viewer's zone, as the dashboard sees it).
	Location *time.Location
}

// Summarize aggregates normalized events into the dashboard summary. It is
// a pure function of its inputs: identical input yields identical output,
// including ordering (count descending, first-seen wins ties).
func Summarize(events []models.NormalizedEvent, opts Options) models.Summary {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	days := opts.Days
	if days <= 0 {
		days = defaultDays
	}

	startTS, endTS := opts.StartTS, opts.EndTS
	explicitRange := startTS > 0 && endTS > 0
	if !explicitRange {
		endTS = now.UnixMilli()
		startTS = endTS - int64(days)*dayMillis
	}

	// Daily buckets run from (days-1) days ago through today, or across the
	// explicit range, so the charts never have gaps.
	var firstDay, lastDay time.Time
	if explicitRange {
		firstDay = startOfDay(time.UnixMilli(startTS).In(loc))
		lastDay = startOfDay(time.UnixMilli(endTS).In(loc))
	} else {
		lastDay = startOfDay(now.In(loc))
		firstDay = lastDay.AddDate(0, 0, -(days - 1))
	}

	var (
		totalViews, totalClicks int
		pixCopies               int
		viewsByDay              = make(map[string]int)
		clicksByDay             = make(map[string]int)
		peakHours               = make([]int, 24)
		sources                 = newCounter()
		linkClicks              = newCounter()
		utmSources              = newCounter()
		utmMediums              = newCounter()
		utmCampaigns            = newCounter()
		categories              = newCounter()
	)

	for _, e := range events {
		if opts.ProfileID != "" && opts.ProfileID != AllProfiles && e.ProfileID != opts.ProfileID {
			continue
		}
		if e.TS < startTS || e.TS > endTS {
			continue
		}

		local := time.UnixMilli(e.TS).In(loc)
		day := local.Format("2006-01-02")
		peakHours[local.Hour()]++

		sources.add(utils.FirstNonEmpty(e.Source, directSource))
		if e.UTM.Source != "" {
			utmSources.add(e.UTM.Source)
		}
		if e.UTM.Medium != "" {
			utmMediums.add(e.UTM.Medium)
		}
		if e.UTM.Campaign != "" {
			utmCampaigns.add(e.UTM.Campaign)
		}

		switch {
		case e.Type == models.EventTypeView:
			totalViews++
			viewsByDay[day]++
		case clickEquivalents[e.Type]:
			totalClicks++
			clicksByDay[day]++
			if e.Type == models.EventTypeClick && e.AssetType == models.AssetTypeButton {
				linkClicks.add(utils.FirstNonEmpty(e.AssetLabel, e.AssetID))
			}
		}

		if e.Type == models.EventTypePixCopied || e.AssetType == models.AssetTypePix {
			pixCopies++
		}
		if e.Type != models.EventTypeView && e.Type != models.EventTypeNPSResponse && e.AssetType != "" {
			categories.add(e.AssetType)
		}
	}

	summary := models.Summary{
		ProfileID:    utils.FirstNonEmpty(opts.ProfileID, AllProfiles),
		Days:         days,
		StartTS:      startTS,
		EndTS:        endTS,
		TotalViews:   totalViews,
		TotalClicks:  totalClicks,
		ViewsByDate:  denseSeries(firstDay, lastDay, viewsByDay),
		ClicksByDate: denseSeries(firstDay, lastDay, clicksByDay),
		PeakHours:    peakHours,
		PixCopies:    pixCopies,
	}

	// CTR is defined as 0 when there are no views. Never NaN or Inf.
	if totalViews > 0 {
		summary.CTR = float64(totalClicks) / float64(totalViews) * 100
	}

	for _, entry := range sources.sorted() {
		summary.Sources = append(summary.Sources, models.SourceCount{Source: entry.key, Count: entry.count})
	}

	for _, entry := range capEntries(linkClicks.sorted(), topLinksCap) {
		link := models.TopLink{Label: entry.key, Count: entry.count}
		if totalClicks > 0 {
			link.Percentage = float64(entry.count) / float64(totalClicks) * 100
		}
		summary.TopLinks = append(summary.TopLinks, link)
	}

	summary.UTMSummary = models.UTMSummary{
		Sources:   utmCounts(utmSources),
		Mediums:   utmCounts(utmMediums),
		Campaigns: utmCounts(utmCampaigns),
	}

	categorized := categories.total()
	for _, entry := range categories.sorted() {
		share := models.CategoryShare{Category: entry.key, Count: entry.count}
		if categorized > 0 {
			share.Percentage = float64(entry.count) / float64(categorized) * 100
		}
		summary.ContentPerformance.ByCategory = append(summary.ContentPerformance.ByCategory, share)
	}

	return summary
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// denseSeries emits one bucket per calendar day from first through last,
// zero-filled where no events landed.
func denseSeries(first, last time.Time, byDay map[string]int) []models.DateCount {
	var series []models.DateCount
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		series = append(series, models.DateCount{Date: key, Count: byDay[key]})
	}
	return series
}

func utmCounts(c *counter) []models.UTMCount {
	entries := capEntries(c.sorted(), utmListCap)
	counts := make([]models.UTMCount, 0, len(entries))
	for _, entry := range entries {
		counts = append(counts, models.UTMCount{Value: entry.key, Count: entry.count})
	}
	return counts
}

func capEntries(entries []counterEntry, limit int) []counterEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

// counter counts keys while remembering first-seen order, so sorting by
// count descending stays deterministic across identical inputs.
type counter struct {
	counts map[string]int
	order  []string
}

type counterEntry struct {
	key   string
	count int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) total() int {
	sum := 0
	for _, n := range c.counts {
		sum += n
	}
	return sum
}

// sorted returns entries by count descending; ties keep first-seen order.
func (c *counter) sorted() []counterEntry {
	entries := make([]counterEntry, 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, counterEntry{key: key, count: c.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	return entries
}
