package domain

import "time"

// Product is the catalog record persisted in Postgres. The search
// pipeline never reads it directly; it works on vector payloads.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Price       *float64  `json:"price"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	ProductURL  string    `json:"product_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductUpdate carries a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Title       *string   `json:"title"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	Features    *[]string `json:"features"`
	ImageURL    *string   `json:"image_url"`
	Category    *string   `json:"category"`
	ProductURL  *string   `json:"product_url"`
}

type ProductListFilter struct {
	Skip     int
	Limit    int
	Category string
}
