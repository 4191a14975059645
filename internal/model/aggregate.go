package model

// NeighborhoodAggregate holds the per-(city, neighborhood) KPI row.
// It is fully derived from the current listing set and recomputed on
// every load; field order matters to the CSV export.
type NeighborhoodAggregate struct {
	City               string  `json:"city"`
	Neighborhood       string  `json:"neighborhood"`
	TotalListings      int     `json:"total_listings"`
	EntireHomeCount    int     `json:"entire_home_count"`
	RatioEntireHomePct float64 `json:"ratio_entire_home_pct"`
	MeanPrice          float64 `json:"mean_price"`
	MeanAvailability   float64 `json:"mean_availability"`
	MeanLatitude       float64 `json:"mean_latitude"`
	MeanLongitude      float64 `json:"mean_longitude"`
	EstOccupancyPct    float64 `json:"est_occupancy_pct"`
}

// CityAggregate holds the per-city KPI row.
type CityAggregate struct {
	City               string  `json:"city"`
	TotalListings      int     `json:"total_listings"`
	EntireHomeCount    int     `json:"entire_home_count"`
	RatioEntireHomePct float64 `json:"ratio_entire_home_pct"`
	MeanPrice          float64 `json:"mean_price"`
	MeanAvailability   float64 `json:"mean_availability"`
	BarriosCount       int     `json:"barrios_count"`
	EstOccupancyPct    float64 `json:"est_occupancy_pct"`
}
