package types

// PaginationResponse represents standardized pagination metadata
type PaginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// ListResponse represents a paginated response with items
type ListResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// NewPaginationResponse creates a new pagination response
func NewPaginationResponse(total, page, limit int) PaginationResponse {
	totalPages := 1
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return PaginationResponse{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// NewListResponse creates a new list response with pagination
func NewListResponse[T any](items []T, total, page, limit int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:      items,
		Pagination: NewPaginationResponse(total, page, limit),
	}
}
