package database

import (
	"time"
)

// Brand is one row of the brands table.
type Brand struct {
	ID          int64
	Website     string // Canonical origin, unique
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time // Last successful upsert
}

// Child row kinds stored in contacts.kind and links.label.
const (
	ContactEmail = "email"
	ContactPhone = "phone"

	LinkOrderTracking = "order_tracking"
	LinkContactUs     = "contact_us"
	LinkBlogs         = "blogs"
)

const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
