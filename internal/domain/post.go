// Package domain contains the core business entities and rules.
package domain

import (
	"fmt"
	"time"
)

// Post represents a single published post.
type Post struct {
	Timestamp time.Time
	Likes     int
	Comments  int
	IsVideo   bool
	Shortcode string // Platform identifier, empty for uploads without one
}

// Derived holds the calendar fields computed from a post timestamp.
type Derived struct {
	Date    Date
	Hour    int
	Weekday string
	Month   MonthPeriod
}

// Derive computes the calendar fields of ts in its own location.
func Derive(ts time.Time) Derived {
	return Derived{
		Date:    DateOf(ts),
		Hour:    ts.Hour(),
		Weekday: ts.Weekday().String(),
		Month:   MonthOf(ts),
	}
}

// Derived returns the calendar fields of the post.
func (p Post) Derived() Derived {
	return Derive(p.Timestamp)
}

// DateOnly returns the calendar date of the post.
func (p Post) DateOnly() Date { return DateOf(p.Timestamp) }

// Hour returns the hour of day (0-23) of the post.
func (p Post) Hour() int { return p.Timestamp.Hour() }

// WeekdayName returns the English weekday name of the post.
func (p Post) WeekdayName() string { return p.Timestamp.Weekday().String() }

// Month returns the year-month bucket of the post.
func (p Post) Month() MonthPeriod { return MonthOf(p.Timestamp) }

// WeekdayOrder is the fixed display order of weekdays, Monday first.
var WeekdayOrder = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.midnight().Sub(other.midnight()).Hours() / 24)
}

// WeekStart returns the Monday of the calendar week containing d.
func (d Date) WeekStart() Date {
	t := d.midnight()
	offset := (int(t.Weekday()) + 6) % 7
	return DateOf(t.AddDate(0, 0, -offset))
}

// midnight is computed in UTC so day arithmetic ignores DST shifts.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// MonthPeriod is a calendar year-month bucket.
type MonthPeriod struct {
	Year  int
	Month time.Month
}

// MonthOf returns the year-month bucket of t in t's location.
func MonthOf(t time.Time) MonthPeriod {
	return MonthPeriod{Year: t.Year(), Month: t.Month()}
}

// String formats the period as YYYY-MM.
func (m MonthPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Before reports whether m is earlier than other.
func (m MonthPeriod) Before(other MonthPeriod) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}
