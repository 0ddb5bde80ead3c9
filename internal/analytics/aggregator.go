package analytics

import (
	"sort"
	"time"

	"github.com/medshare/portal-dashboard/pkg/types"
)

// Bucket key layouts. Hourly keys truncate to the viewer's local
// calendar date and hour.
const (
	hourlyLayout = "2006-01-02 15:00"
	hourlyParse  = "2006-01-02 15:04"
	dailyLayout  = "2006-01-02"
)

// AggregateHourly groups records into local-time hour buckets and
// counts granted/denied outcomes per bucket. Buckets are sorted by
// chronological value, not string order, so keys stay correctly
// ordered across midnight and month boundaries.
func AggregateHourly(records []types.LogRecord) []types.HourlyBucket {
	grouped := make(map[string]*types.HourlyBucket)

	for _, record := range records {
		key := record.OccurredAt().Local().Format(hourlyLayout)
		bucket, ok := grouped[key]
		if !ok {
			bucket = &types.HourlyBucket{Hour: key}
			grouped[key] = bucket
		}
		if record.Granted() {
			bucket.Granted++
		} else {
			bucket.Denied++
		}
	}

	buckets := make([]types.HourlyBucket, 0, len(grouped))
	for _, bucket := range grouped {
		buckets = append(buckets, *bucket)
	}

	sort.Slice(buckets, func(i, j int) bool {
		ti, _ := time.ParseInLocation(hourlyParse, buckets[i].Hour, time.Local)
		tj, _ := time.ParseInLocation(hourlyParse, buckets[j].Hour, time.Local)
		return ti.Before(tj)
	})

	return buckets
}

// AggregateDaily groups records into local calendar-date buckets
func AggregateDaily(records []types.LogRecord) []types.TimeSeriesPoint {
	grouped := make(map[string]*types.TimeSeriesPoint)

	for _, record := range records {
		key := record.OccurredAt().Local().Format(dailyLayout)
		point, ok := grouped[key]
		if !ok {
			point = &types.TimeSeriesPoint{Date: key}
			grouped[key] = point
		}
		if record.Granted() {
			point.Granted++
		} else {
			point.Denied++
		}
	}

	points := make([]types.TimeSeriesPoint, 0, len(grouped))
	for _, point := range grouped {
		points = append(points, *point)
	}

	// Daily keys share a fixed-width layout, so lexical order is
	// chronological order here
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return points
}

// Distribution counts overall granted/denied outcomes
func Distribution(records []types.LogRecord) []types.DistributionSlice {
	granted, denied := 0, 0
	for _, record := range records {
		if record.Granted() {
			granted++
		} else {
			denied++
		}
	}

	return []types.DistributionSlice{
		{Name: types.StatusGranted, Value: granted},
		{Name: types.StatusDenied, Value: denied},
	}
}

// AvailableDates extracts the distinct calendar dates present in an
// hourly series, preserving the series' chronological order
func AvailableDates(hourly []types.HourlyBucket) []string {
	seen := make(map[string]bool)
	var dates []string

	for _, bucket := range hourly {
		date := bucket.Hour
		if len(date) > len(dailyLayout) {
			date = date[:len(dailyLayout)]
		}
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}

	return dates
}

// DefaultDate picks the most recent date in the set, or none when the
// set is empty
func DefaultDate(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	return dates[len(dates)-1]
}

// FillSnapshot completes an analytics snapshot from raw records.
// Server-provided series are authoritative and kept as-is; only the
// parts the backend response left empty are recomputed locally.
func FillSnapshot(server *types.AnalyticsSnapshot, records []types.LogRecord) *types.AnalyticsSnapshot {
	snapshot := &types.AnalyticsSnapshot{}
	if server != nil {
		*snapshot = *server
	}

	if len(snapshot.HourlyActivity) == 0 {
		snapshot.HourlyActivity = AggregateHourly(records)
	}

	if len(snapshot.TimeSeries) == 0 {
		snapshot.TimeSeries = AggregateDaily(records)
	}

	if len(snapshot.Distribution) == 0 {
		snapshot.Distribution = Distribution(records)
	}

	snapshot.AvailableDates = AvailableDates(snapshot.HourlyActivity)
	snapshot.DefaultDate = DefaultDate(snapshot.AvailableDates)

	return snapshot
}

// FilterHourlyByDate keeps only the buckets belonging to one calendar
// date, for the hourly chart's date selector
func FilterHourlyByDate(hourly []types.HourlyBucket, date string) []types.HourlyBucket {
	if date == "" {
		return hourly
	}

	var filtered []types.HourlyBucket
	for _, bucket := range hourly {
		if len(bucket.Hour) >= len(date) && bucket.Hour[:len(date)] == date {
			filtered = append(filtered, bucket)
		}
	}

	return filtered
}
