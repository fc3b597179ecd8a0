package entities

type Location struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	IsWarehouse bool   `json:"is_warehouse"`
}
