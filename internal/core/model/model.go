// Package model defines core domain types shared across the service.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
	SRID   string
}

// String representation matching leaflet/wms bbox format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

func (b BBox) Contains(lat, lng float64) bool {
	return lng >= b.X1 && lng <= b.X2 && lat >= b.Y1 && lat <= b.Y2
}

// RawCoord keeps a coordinate exactly as the data file carried it. JSON
// strings and JSON numbers are both accepted; numbers keep their literal text.
type RawCoord string

func (c *RawCoord) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("coordinate string: %w", err)
		}
		*c = RawCoord(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("coordinate must be string or number: %w", err)
	}
	*c = RawCoord(n.String())
	return nil
}

// PropertyRecord is one storefront row from the open data export. Optional
// text fields are empty when absent.
type PropertyRecord struct {
	Address              string   `json:"property_street_address_or,omitempty"`
	Latitude             RawCoord `json:"latitude,omitempty"`
	Longitude            RawCoord `json:"longitude,omitempty"`
	PrimaryActivity      string   `json:"primary_business_activity,omitempty"`
	Borough              string   `json:"borough,omitempty"`
	ConstructionReported string   `json:"construction_reported,omitempty"`
	VacantOrDateSold     string   `json:"vacant_6_30_or_date_sold,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
