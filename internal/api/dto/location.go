package dto

type LocationRequest struct {
	ShortCode           string   `json:"short_code"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	State               string   `json:"state"`
	Zip                 string   `json:"zip"`
	Country             string   `json:"country"`
	Type                string   `json:"type"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	RecyclingLocationID *int64   `json:"recycling_location_id"`
	IsActive            *bool    `json:"is_active"`
}

type LocationResponse struct {
	ID                  int64    `json:"id"`
	ShortCode           string   `json:"short_code"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	State               string   `json:"state"`
	Zip                 string   `json:"zip"`
	Country             string   `json:"country"`
	FullAddress         string   `json:"full_address"`
	Type                string   `json:"type"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	RecyclingLocationID *int64   `json:"recycling_location_id"`
	IsActive            bool     `json:"is_active"`
}

type ListLocationResponse struct {
	Locations []LocationResponse `json:"locations"`
}
