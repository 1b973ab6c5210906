package catalog

import (
	"github.com/folio-sh/folio/internal/domain"
)

// mapBook converts an API book to the domain entity
func mapBook(dto bookDTO) domain.Book {
	status := domain.StockStatus(dto.StockStatus)
	if status == "" {
		status = domain.StockInStock
	}
	return domain.Book{
		ID:          dto.ID,
		Title:       dto.Title,
		Slug:        dto.Slug,
		Authors:     dto.Authors,
		Description: dto.Description,
		Price:       dto.Price,
		SalePrice:   dto.SalePrice,
		StockStatus: status,
		Pages:       dto.Pages,
		ISBN:        dto.ISBN,
		Year:        dto.Year,
		Rating:      dto.Rating,
		CoverURL:    dto.CoverURL,
		Tags:        dto.Tags,
	}
}

func mapBooks(dtos []bookDTO) []domain.Book {
	books := make([]domain.Book, 0, len(dtos))
	for _, dto := range dtos {
		books = append(books, mapBook(dto))
	}
	return books
}

// mapPack converts an API pack to the domain entity
func mapPack(dto packDTO) domain.Pack {
	status := domain.StockStatus(dto.StockStatus)
	if status == "" {
		status = domain.StockInStock
	}
	pack := domain.Pack{
		ID:          dto.ID,
		Title:       dto.Title,
		Slug:        dto.Slug,
		Description: dto.Description,
		Price:       dto.Price,
		SalePrice:   dto.SalePrice,
		StockStatus: status,
		CoverURL:    dto.CoverURL,
		BookIDs:     dto.BookIDs,
	}
	if len(dto.Books) > 0 {
		pack.Books = mapBooks(dto.Books)
		if len(pack.BookIDs) == 0 {
			for _, b := range pack.Books {
				pack.BookIDs = append(pack.BookIDs, b.ID)
			}
		}
	}
	return pack
}

func mapPacks(dtos []packDTO) []domain.Pack {
	packs := make([]domain.Pack, 0, len(dtos))
	for _, dto := range dtos {
		packs = append(packs, mapPack(dto))
	}
	return packs
}

func mapTags(dtos []tagDTO) []domain.Tag {
	tags := make([]domain.Tag, 0, len(dtos))
	for _, dto := range dtos {
		tags = append(tags, domain.Tag{
			ID:        dto.ID,
			Name:      dto.Name,
			Slug:      dto.Slug,
			BookCount: dto.BookCount,
		})
	}
	return tags
}
