package caseindex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// dateArg renders a calendar date the way both sqlite TEXT and postgres DATE
// columns compare correctly.
func dateArg(t time.Time) string {
	return t.Format(dateLayout)
}

// dbDate scans DATE columns from drivers that return time.Time (pgx) as well
// as those that return text (sqlite).
type dbDate struct {
	Time  time.Time
	Valid bool
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("unsupported date type %T", src)
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time, d.Valid = t, true
	return nil
}

func (d dbDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return dateArg(d.Time), nil
}

func (d dbDate) ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
