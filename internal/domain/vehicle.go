package domain

import "time"

// Vehicle representa um veículo de um cliente.
type Vehicle struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Color     string    `json:"color"`
	OwnerID   string    `json:"owner_id"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// VehicleFilter define os parâmetros de busca e paginação de veículos.
type VehicleFilter struct {
	Plate string
	Brand string
	Model string
	Page  int
	Limit int
}
