// internal/domain/subscription/dto.go
package subscription

type RequestBySKU struct {
	SKU string `json:"sku" binding:"required"`
}

// SDKRequest is the SDK-surface variant of RequestBySKU; the field name differs
// for wire compatibility.
type SDKRequest struct {
	PackSKU string `json:"pack_sku" binding:"required"`
}

type AssignRequest struct {
	PackID int64 `json:"pack_id" binding:"required"`
}

type HistoryFilters struct {
	Page     int
	Limit    int
	SortDesc bool
}

type ListFilters struct {
	Status Status
	Page   int
	Limit  int
}
