// Package types contains common types used across the application.
package types

// HeatmapCell is one borough's aggregate for the choropleth map.
type HeatmapCell struct {
	Borough  string  `json:"borough"`
	Total    int     `json:"total"`
	Severity float64 `json:"severity"`
	// Matched is false when no boundary feature exists for the borough.
	Matched bool `json:"matched"`
}

// TrendPoint is one month of a borough's crime trend.
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// CategoryCount is the total for one crime category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// BreakdownSeries is the monthly trend of one minor category within a
// major category.
type BreakdownSeries struct {
	Minor  string       `json:"minor"`
	Points []TrendPoint `json:"points"`
}

// RankEntry is one row of the borough severity ranking.
type RankEntry struct {
	Rank     int     `json:"rank"`
	Borough  string  `json:"borough"`
	Severity float64 `json:"severity"`
	Total    int     `json:"total"`
}
