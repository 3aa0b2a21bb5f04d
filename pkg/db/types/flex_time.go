package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// FlexTime scans timestamps regardless of whether the driver hands back a
// time.Time (postgres) or a string (sqlite computed columns).
type FlexTime struct {
	time.Time
}

var _ driver.Valuer = FlexTime{}

func (ft FlexTime) Value() (driver.Value, error) {
	return ft.Time, nil
}

func (ft *FlexTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ft.Time = time.Time{}
		return nil
	case time.Time:
		ft.Time = v
		return nil
	case []byte:
		return ft.parse(string(v))
	case string:
		return ft.parse(v)
	default:
		return fmt.Errorf("FlexTime: unsupported Scan type %T", src)
	}
}

func (ft *FlexTime) parse(s string) error {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}
	return fmt.Errorf("FlexTime: cannot parse %q", s)
}
