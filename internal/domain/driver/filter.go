package driver

import "strings"

// FilterAll disables the vehicle type filter
const FilterAll = "all"

// Filter narrows a snapshot. The zero value matches every visible record.
type Filter struct {
	VehicleType VehicleType
}

// ParseFilter accepts "", "all", "tricycle" or "multicab"
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == FilterAll {
		return Filter{}, nil
	}
	vt, err := ParseVehicleType(s)
	if err != nil {
		return Filter{}, ErrInvalidFilter
	}
	return Filter{VehicleType: vt}, nil
}

// String returns the wire form of the filter
func (f Filter) String() string {
	if f.VehicleType == "" {
		return FilterAll
	}
	return string(f.VehicleType)
}

// Matches reports whether a record is visible and passes the filter
func (f Filter) Matches(r *Record) bool {
	if r == nil || !r.Visible() {
		return false
	}
	return f.VehicleType == "" || r.VehicleType == f.VehicleType
}

// Apply returns the records matching f, preserving their order
func (f Filter) Apply(records []*Record) []*Record {
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
