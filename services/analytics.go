package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"partypass-api/models"
)

type AnalyticsService struct {
	db *sql.DB
}

func NewAnalyticsService(db *sql.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// GetReport fetches the user's event and guest snapshots (optionally
// date-filtered) and aggregates them. A fetch failure surfaces to the
// caller; unlike search there is no partial-result behavior here.
func (s *AnalyticsService) GetReport(ctx context.Context, userID string, from, to *time.Time) (*models.AnalyticsReport, error) {
	events, err := s.fetchEvents(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for analytics: %w", err)
	}

	guests, err := s.fetchGuests(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load guests for analytics: %w", err)
	}

	return BuildReport(events, guests, time.Now()), nil
}

func (s *AnalyticsService) fetchEvents(ctx context.Context, userID string, from, to *time.Time) ([]models.Event, error) {
	query := `
		SELECT id, title, date, COALESCE(location, ''), COALESCE(category, ''), status,
			guest_count, accepted_count, declined_count, pending_count, maybe_count, created_at
		FROM events
		WHERE user_id = $1
		  AND ($2::timestamp IS NULL OR date >= $2)
		  AND ($3::timestamp IS NULL OR date <= $3)
	`

	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Location, &e.Category, &e.Status,
			&e.GuestCount, &e.AcceptedCount, &e.DeclinedCount, &e.PendingCount, &e.MaybeCount, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (s *AnalyticsService) fetchGuests(ctx context.Context, userID string, from, to *time.Time) ([]models.Guest, error) {
	query := `
		SELECT g.id, g.event_id, g.status, g.invited_at, g.responded_at
		FROM guests g
		JOIN events e ON g.event_id = e.id
		WHERE g.user_id = $1
		  AND ($2::timestamp IS NULL OR e.date >= $2)
		  AND ($3::timestamp IS NULL OR e.date <= $3)
	`

	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []models.Guest
	for rows.Next() {
		var g models.Guest
		if err := rows.Scan(&g.ID, &g.EventID, &g.Status, &g.InvitedAt, &g.RespondedAt); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}

	return guests, rows.Err()
}

// BuildReport computes the full aggregate from snapshots. Pure function; the
// clock is a parameter so month boundaries are testable.
func BuildReport(events []models.Event, guests []models.Guest, now time.Time) *models.AnalyticsReport {
	report := &models.AnalyticsReport{
		TotalEvents:       len(events),
		TotalGuests:       len(guests),
		PopularCategories: []models.CategoryStat{},
		MonthlyTrend:      []models.MonthStat{},
		TopLocations:      []models.LocationStat{},
	}

	for _, g := range guests {
		switch g.Status {
		case models.GuestStatusAccepted:
			report.AcceptedGuests++
		case models.GuestStatusDeclined:
			report.DeclinedGuests++
		case models.GuestStatusMaybe:
			report.MaybeGuests++
		default:
			report.PendingGuests++
		}
	}
	if report.TotalGuests > 0 {
		report.AcceptanceRate = roundPct(float64(report.AcceptedGuests) / float64(report.TotalGuests) * 100)
	}

	report.GrowthRate = growthRate(events, now)
	report.PopularCategories = popularCategories(events)
	report.MonthlyTrend = monthlyTrend(events, now)
	report.Engagement = engagementBuckets(events)
	report.TopLocations = topLocations(events)

	for _, e := range events {
		report.HourHistogram[e.Date.Hour()]++
		report.WeekdayHistogram[int(e.Date.Weekday())]++
	}

	report.ResponseTimes = responseTimes(guests)

	return report
}

// growthRate compares events created this calendar month against last month.
// Zero previous and nonzero current is reported as a flat 100% rather than
// dividing by zero; zero on both sides is 0%.
func growthRate(events []models.Event, now time.Time) float64 {
	currentMonth := now.Format("2006-01")
	previousMonth := now.AddDate(0, -1, 0).Format("2006-01")

	var current, previous int
	for _, e := range events {
		switch e.CreatedAt.Format("2006-01") {
		case currentMonth:
			current++
		case previousMonth:
			previous++
		}
	}

	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return roundPct(float64(current-previous) / float64(previous) * 100)
}

func popularCategories(events []models.Event) []models.CategoryStat {
	counts := make(map[string]int)
	for _, e := range events {
		category := e.Category
		if category == "" {
			category = "uncategorized"
		}
		counts[category]++
	}

	stats := make([]models.CategoryStat, 0, len(counts))
	for category, count := range counts {
		pct := 0.0
		if len(events) > 0 {
			pct = roundPct(float64(count) / float64(len(events)) * 100)
		}
		stats = append(stats, models.CategoryStat{Category: category, Count: count, Percentage: pct})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	if len(stats) > 5 {
		stats = stats[:5]
	}
	return stats
}

// monthlyTrend covers the six months ending with the current one.
func monthlyTrend(events []models.Event, now time.Time) []models.MonthStat {
	trend := make([]models.MonthStat, 0, 6)
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		stat := models.MonthStat{Month: month}
		for _, e := range events {
			if e.Date.Format("2006-01") == month {
				stat.Events++
				stat.Guests += e.GuestCount
			}
		}
		trend = append(trend, stat)
	}
	return trend
}

func engagementBuckets(events []models.Event) models.EngagementBuckets {
	var buckets models.EngagementBuckets
	for _, e := range events {
		if e.GuestCount == 0 || e.AcceptedCount == 0 {
			buckets.None++
			continue
		}
		ratio := float64(e.AcceptedCount) / float64(e.GuestCount)
		switch {
		case ratio < 0.25:
			buckets.Low++
		case ratio < 0.75:
			buckets.Medium++
		default:
			buckets.High++
		}
	}
	return buckets
}

func topLocations(events []models.Event) []models.LocationStat {
	type locAgg struct {
		events int
		guests int
	}
	counts := make(map[string]*locAgg)
	for _, e := range events {
		if e.Location == "" {
			continue
		}
		agg, ok := counts[e.Location]
		if !ok {
			agg = &locAgg{}
			counts[e.Location] = agg
		}
		agg.events++
		agg.guests += e.GuestCount
	}

	stats := make([]models.LocationStat, 0, len(counts))
	for location, agg := range counts {
		stats = append(stats, models.LocationStat{
			Location:  location,
			Events:    agg.events,
			AvgGuests: roundPct(float64(agg.guests) / float64(agg.events)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Events != stats[j].Events {
			return stats[i].Events > stats[j].Events
		}
		return stats[i].Location < stats[j].Location
	})
	if len(stats) > 5 {
		stats = stats[:5]
	}
	return stats
}

// responseTimes buckets hours-to-response at <24h, 24h-7d, >7d.
func responseTimes(guests []models.Guest) models.ResponseTimeStats {
	var stats models.ResponseTimeStats
	var totalHours float64
	var responded int

	for _, g := range guests {
		if g.RespondedAt == nil {
			continue
		}
		hours := g.RespondedAt.Sub(g.InvitedAt).Hours()
		if hours < 0 {
			continue
		}
		responded++
		totalHours += hours

		switch {
		case hours < 24:
			stats.Under24h++
		case hours <= 7*24:
			stats.Under7d++
		default:
			stats.Over7d++
		}
	}

	if responded > 0 {
		stats.AverageHours = roundPct(totalHours / float64(responded))
	}
	return stats
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
