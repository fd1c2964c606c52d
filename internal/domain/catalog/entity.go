package catalog

import (
	"strings"
	"time"
	"unicode"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. ISBN作为业务唯一标识,入库前统一规范化为纯数字(数据库层保证唯一性)
// 2. 可借副本数量不在此存储,每次由副本仓储实时统计(避免冗余字段与真实状态漂移)
// 3. 出版社可为空:出版社被删除时,图书的PublisherID置为NULL
type Book struct {
	ID              uint
	Title           string     // 书名
	ISBN            string     // ISBN号(10位或13位数字)
	PublicationDate *time.Time // 出版日期(可选)
	Synopsis        string     // 内容简介
	PublisherID     *uint      // 出版社ID(可为空)
	Publisher       *Publisher
	Authors         []Author
	Categories      []Category
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn需调用方先经NormalizeISBN规范化
func NewBook(title, isbn string, publicationDate *time.Time, synopsis string, publisherID *uint, authors []Author, categories []Category) *Book {
	now := time.Now()
	return &Book{
		Title:           title,
		ISBN:            isbn,
		PublicationDate: publicationDate,
		Synopsis:        synopsis,
		PublisherID:     publisherID,
		Authors:         authors,
		Categories:      categories,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AuthorIDs 返回关联作者ID
func (b *Book) AuthorIDs() []uint {
	ids := make([]uint, len(b.Authors))
	for i, a := range b.Authors {
		ids[i] = a.ID
	}
	return ids
}

// CategoryIDs 返回关联分类ID
func (b *Book) CategoryIDs() []uint {
	ids := make([]uint, len(b.Categories))
	for i, c := range b.Categories {
		ids[i] = c.ID
	}
	return ids
}

// Author 作者
type Author struct {
	ID        uint
	Name      string
	Biography string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Publisher 出版社
type Publisher struct {
	ID        uint
	Name      string
	Address   string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category 图书分类
type Category struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeISBN 去除分隔符并校验ISBN
// 支持:
// - ISBN-10: 9位数字加一位校验位,校验位可以是X,如0-8044-2957-X → 080442957X
// - ISBN-13: 13位数字,如978-7-115-42802-8 → 9787115428028
// 只允许数字、连字符和空格(X只能出现在ISBN-10末位),不校验校验位
func NormalizeISBN(isbn string) (string, error) {
	var b strings.Builder
	checkX := false
	for _, r := range isbn {
		switch {
		case r == '-' || unicode.IsSpace(r):
			continue
		case checkX:
			// X之后不能再有字符
			return "", ErrInvalidISBN
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X' || r == 'x':
			checkX = true
			b.WriteRune('X')
		default:
			return "", ErrInvalidISBN
		}
	}

	clean := b.String()
	if checkX && len(clean) != 10 {
		return "", ErrInvalidISBN
	}
	if len(clean) != 10 && len(clean) != 13 {
		return "", ErrInvalidISBN
	}
	return clean, nil
}
