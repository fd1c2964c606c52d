package catalog

import (
	"time"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/catalog"
)

// dateLayout 出版日期的展示格式
const dateLayout = "2006-01-02"

// AuthorResponse 作者
type AuthorResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Biography string `json:"biography,omitempty"`
}

// PublisherResponse 出版社
type PublisherResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
}

// CategoryResponse 分类
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookResponse 图书详情
type BookResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	ISBN            string             `json:"isbn"`
	PublicationDate string             `json:"publication_date,omitempty"`
	Synopsis        string             `json:"synopsis,omitempty"`
	Publisher       *PublisherResponse `json:"publisher,omitempty"`
	Authors         []AuthorResponse   `json:"authors"`
	Categories      []CategoryResponse `json:"categories"`
	AvailableCopies int64              `json:"available_copies"` // 实时统计
	CreatedAt       string             `json:"created_at"`
}

// CopyResponse 副本
type CopyResponse struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	Barcode   string `json:"barcode"`
	Location  string `json:"location,omitempty"`
	Format    string `json:"format"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
}

func toAuthorResponse(a catalog.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name, Biography: a.Biography}
}

func toPublisherResponse(p *catalog.Publisher) *PublisherResponse {
	if p == nil {
		return nil
	}
	return &PublisherResponse{ID: p.ID, Name: p.Name, Address: p.Address, Website: p.Website}
}

func toCategoryResponse(c catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func toBookResponse(b *catalog.Book, available int64) *BookResponse {
	resp := &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		ISBN:            b.ISBN,
		Synopsis:        b.Synopsis,
		Publisher:       toPublisherResponse(b.Publisher),
		Authors:         make([]AuthorResponse, len(b.Authors)),
		Categories:      make([]CategoryResponse, len(b.Categories)),
		AvailableCopies: available,
		CreatedAt:       b.CreatedAt.Format(time.DateTime),
	}
	if b.PublicationDate != nil {
		resp.PublicationDate = b.PublicationDate.Format(dateLayout)
	}
	for i, a := range b.Authors {
		resp.Authors[i] = toAuthorResponse(a)
	}
	for i, c := range b.Categories {
		resp.Categories[i] = toCategoryResponse(c)
	}
	return resp
}

func toCopyResponse(c *bookcopy.Copy) *CopyResponse {
	return &CopyResponse{
		ID:        c.ID,
		BookID:    c.BookID,
		Barcode:   c.Barcode,
		Location:  c.Location,
		Format:    string(c.Format),
		Condition: string(c.Condition),
		Status:    string(c.Status),
	}
}
