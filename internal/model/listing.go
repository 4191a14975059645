// Package model defines the shared data types of the analytics pipeline.
package model

// RoomTypeEntireHome is the canonical room type counted toward the
// entire-home ratio. Matching is exact and case-sensitive, as sourced.
const RoomTypeEntireHome = "Entire home/apt"

// Listing is one cleaned accommodation row from the unified listings export.
type Listing struct {
	City            string  `json:"city"`
	Neighborhood    string  `json:"neighborhood"`
	RoomType        string  `json:"room_type"`
	Price           float64 `json:"price"`
	Availability365 int     `json:"availability_365"`
	HasAvailability bool    `json:"has_availability"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	HasCoordinates  bool    `json:"has_coordinates"`
}
