package types

// Filter represents query parameters for filtering and pagination.
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// Window применяет Limit/Offset к длине выборки и возвращает границы среза.
func (f Filter) Window(total int) (from, to int) {
	from = f.Offset
	if from < 0 {
		from = 0
	}
	if from > total {
		from = total
	}
	to = total
	if f.WithPagination && f.Limit > 0 && from+f.Limit < total {
		to = from + f.Limit
	}
	return from, to
}

// http://localhost:8080/api/equipment?search=dell&filter[state]=ACTIVE&filter[equipment_type_id]=1,2&limit=10&page=1&withPagination=true
