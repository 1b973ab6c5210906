package catalog

// bookListResponse is the envelope for paged and batched book endpoints
type bookListResponse struct {
	Data  []bookDTO `json:"data"`
	Total int       `json:"total,omitempty"`
	Page  int       `json:"page,omitempty"`
}

type packListResponse struct {
	Data []packDTO `json:"data"`
}

type tagListResponse struct {
	Data []tagDTO `json:"data"`
}

// bookDTO mirrors the storefront API book representation
type bookDTO struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Authors     []string `json:"authors"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	SalePrice   float64  `json:"sale_price,omitempty"`
	StockStatus string   `json:"stock_status,omitempty"`
	Pages       int      `json:"pages,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// packDTO mirrors the storefront API pack representation. Books is only
// populated on the detail endpoint.
type packDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"sale_price,omitempty"`
	StockStatus string    `json:"stock_status,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	BookIDs     []int64   `json:"book_ids"`
	Books       []bookDTO `json:"books,omitempty"`
}

type tagDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	BookCount int    `json:"book_count,omitempty"`
}
