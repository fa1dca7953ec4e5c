package collection

type Page[T any] struct {
	Items          []T `json:"items"`
	TotalItemCount int `json:"totalItemCount"`
	PageIndex      int `json:"pageIndex"`
	PageSize       int `json:"pageSize"`
	TotalPageCount int `json:"totalPageCount"`
}

// NewPage derives the page count from the total and the requested size.
func NewPage[T any](items []T, totalItemCount, pageIndex, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:          items,
		TotalItemCount: totalItemCount,
		PageIndex:      pageIndex,
		PageSize:       pageSize,
		TotalPageCount: TotalPages(totalItemCount, pageSize),
	}
}

func TotalPages(totalItemCount, pageSize int) int {
	if pageSize <= 0 || totalItemCount <= 0 {
		return 0
	}
	pages := totalItemCount / pageSize
	if totalItemCount%pageSize != 0 {
		pages++
	}
	return pages
}

func (p Page[T]) HasPrevious() bool {
	return p.PageIndex > 0
}

func (p Page[T]) HasNext() bool {
	return p.PageIndex+1 < p.TotalPageCount
}
