package etl

import (
	"slices"
)

const (
	fieldLatitude  = "latitude"
	fieldLongitude = "longitude"
	fieldActivity  = "primary_business_activity"
)

// WithCoordinates keeps the records whose latitude and longitude are both
// present and non-empty.
func WithCoordinates(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if truthy(r[fieldLatitude]) && truthy(r[fieldLongitude]) {
			out = append(out, r)
		}
	}
	return out
}

// Activities lists the distinct primary business activities, sorted.
// Records without the field are skipped.
func Activities(in []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range in {
		v, ok := r[fieldActivity]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	default:
		return true
	}
}
