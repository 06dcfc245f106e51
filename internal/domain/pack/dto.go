// internal/domain/pack/dto.go
package pack

type CreateRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	SKU            string  `json:"sku" binding:"required"`
	Price          float64 `json:"price" binding:"min=0"`
	ValidityMonths int     `json:"validity_months" binding:"required,min=1,max=12"`
}

type UpdateRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	SKU            *string  `json:"sku,omitempty"`
	Price          *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	ValidityMonths *int     `json:"validity_months,omitempty" binding:"omitempty,min=1,max=12"`
}

type ListFilters struct {
	Search string
	Page   int
	Limit  int
}
