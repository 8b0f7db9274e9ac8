package models

// ============================================================================
// ANALYTICS MODELS (derived, never persisted)
// ============================================================================

type AnalyticsReport struct {
	TotalEvents       int                `json:"total_events"`
	TotalGuests       int                `json:"total_guests"`
	AcceptedGuests    int                `json:"accepted_guests"`
	DeclinedGuests    int                `json:"declined_guests"`
	PendingGuests     int                `json:"pending_guests"`
	MaybeGuests       int                `json:"maybe_guests"`
	AcceptanceRate    float64            `json:"acceptance_rate"`
	GrowthRate        float64            `json:"growth_rate"`
	PopularCategories []CategoryStat     `json:"popular_categories"`
	MonthlyTrend      []MonthStat        `json:"monthly_trend"`
	Engagement        EngagementBuckets  `json:"engagement"`
	TopLocations      []LocationStat     `json:"top_locations"`
	HourHistogram     [24]int            `json:"hour_histogram"`
	WeekdayHistogram  [7]int             `json:"weekday_histogram"`
	ResponseTimes     ResponseTimeStats  `json:"response_times"`
}

type CategoryStat struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MonthStat struct {
	Month  string `json:"month"` // YYYY-MM
	Events int    `json:"events"`
	Guests int    `json:"guests"`
}

// EngagementBuckets counts events by accepted-guest ratio:
// none = 0 accepted, low < 25%, medium < 75%, high >= 75%.
type EngagementBuckets struct {
	None   int `json:"none"`
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type LocationStat struct {
	Location  string  `json:"location"`
	Events    int     `json:"events"`
	AvgGuests float64 `json:"avg_guests"`
}

type ResponseTimeStats struct {
	AverageHours float64 `json:"average_hours"`
	Under24h     int     `json:"under_24h"`
	Under7d      int     `json:"under_7d"`
	Over7d       int     `json:"over_7d"`
}
