package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb/rdbtest"
)

type fixture struct {
	db       *gorm.DB
	create   *CreateBookUseCase
	get      *GetBookUseCase
	list     *ListBooksUseCase
	del      *DeleteBookUseCase
	taxonomy *TaxonomyUseCase
	copies   *CopyUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := rdbtest.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tx := rdb.NewTxManager(db)
	books := rdb.NewBookRepository(db)
	authors := rdb.NewAuthorRepository(db)
	publishers := rdb.NewPublisherRepository(db)
	categories := rdb.NewCategoryRepository(db)
	copies := rdb.NewCopyRepository(db)

	return &fixture{
		db:       db,
		create:   NewCreateBookUseCase(books, authors, publishers, categories, log),
		get:      NewGetBookUseCase(books, copies),
		list:     NewListBooksUseCase(books),
		del:      NewDeleteBookUseCase(books, tx, log),
		taxonomy: NewTaxonomyUseCase(authors, publishers, categories, tx, log),
		copies:   NewCopyUseCase(books, copies, log),
	}
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author, err := f.taxonomy.CreateAuthor(ctx, CreateAuthorRequest{Name: "Frank Herbert"})
	require.NoError(t, err)
	publisher, err := f.taxonomy.CreatePublisher(ctx, CreatePublisherRequest{Name: "Chilton"})
	require.NoError(t, err)
	category, err := f.taxonomy.CreateCategory(ctx, "Science Fiction")
	require.NoError(t, err)

	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	book, err := f.create.Execute(ctx, CreateBookRequest{
		Title:           "  Dune ",
		ISBN:            "978-0-441-01359-3",
		PublicationDate: &published,
		PublisherID:     &publisher.ID,
		AuthorIDs:       []uint{author.ID},
		CategoryIDs:     []uint{category.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "9780441013593", book.ISBN)
	assert.Equal(t, "1965-08-01", book.PublicationDate)
	require.NotNil(t, book.Publisher)
	assert.Equal(t, "Chilton", book.Publisher.Name)

	got, err := f.get.Execute(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Frank Herbert", got.Authors[0].Name)
	require.Len(t, got.Categories, 1)
	assert.Zero(t, got.AvailableCopies)

	t.Run("duplicate isbn", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateBookRequest{Title: "Dune again", ISBN: "9780441013593"})
		assert.ErrorIs(t, err, catalog.ErrISBNDuplicate)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateBookRequest{Title: " ", ISBN: "9780441013593"})
		assert.ErrorIs(t, err, catalog.ErrInvalidTitle)

		_, err = f.create.Execute(ctx, CreateBookRequest{Title: "X", ISBN: "12-34"})
		assert.ErrorIs(t, err, catalog.ErrInvalidISBN)

		_, err = f.create.Execute(ctx, CreateBookRequest{Title: "X", ISBN: "0441013597", AuthorIDs: []uint{999}})
		assert.ErrorIs(t, err, catalog.ErrAuthorNotFound)

		missing := uint(999)
		_, err = f.create.Execute(ctx, CreateBookRequest{Title: "X", ISBN: "0441013597", PublisherID: &missing})
		assert.ErrorIs(t, err, catalog.ErrPublisherNotFound)
	})
}

func TestListBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rdbtest.SeedBook(t, f.db, "Dune", "9780441013593")
	rdbtest.SeedBook(t, f.db, "Emma", "9780141439587")
	rdbtest.SeedBook(t, f.db, "Dune Messiah", "9780593098233")

	resp, err := f.list.Execute(ctx, ListBooksRequest{Keyword: "dune", PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.List, 1)

	resp, err = f.list.Execute(ctx, ListBooksRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.PageSize)
	assert.Len(t, resp.List, 3)
}

func TestCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := rdbtest.SeedBook(t, f.db, "Dune", "9780441013593")

	c, err := f.copies.RegisterCopy(ctx, RegisterCopyRequest{BookID: bookID, Barcode: "BC-001"})
	require.NoError(t, err)
	assert.Equal(t, "physical", c.Format)
	assert.Equal(t, "good", c.Condition)
	assert.Equal(t, "available", c.Status)

	_, err = f.copies.RegisterCopy(ctx, RegisterCopyRequest{BookID: bookID, Barcode: "BC-001"})
	assert.ErrorIs(t, err, bookcopy.ErrBarcodeDuplicate)
	_, err = f.copies.RegisterCopy(ctx, RegisterCopyRequest{BookID: 999, Barcode: "BC-002"})
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
	_, err = f.copies.RegisterCopy(ctx, RegisterCopyRequest{BookID: bookID, Barcode: "BC-003", Format: "tape"})
	assert.ErrorIs(t, err, bookcopy.ErrInvalidFormat)

	loaned, err := f.copies.RegisterCopy(ctx, RegisterCopyRequest{BookID: bookID, Barcode: "BC-004", Format: "digital"})
	require.NoError(t, err)
	rdbtest.SeedLoan(t, f.db, rdbtest.SeedUser(t, f.db, "alice"), loaned.ID, time.Now())

	all, err := f.copies.ListCopies(ctx, bookID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	available, err := f.copies.ListCopies(ctx, bookID, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, c.ID, available[0].ID)

	got, err := f.get.Execute(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.AvailableCopies)

	updated, err := f.copies.UpdateCondition(ctx, loaned.ID, "damaged")
	require.NoError(t, err)
	assert.Equal(t, "damaged", updated.Condition)
	assert.Equal(t, "loaned", rdbtest.CopyStatus(t, f.db, loaned.ID))

	_, err = f.copies.UpdateCondition(ctx, loaned.ID, "shredded")
	assert.ErrorIs(t, err, bookcopy.ErrInvalidCondition)
	_, err = f.copies.UpdateCondition(ctx, 999, "good")
	assert.ErrorIs(t, err, bookcopy.ErrCopyNotFound)
}

func TestDeleteBook_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := rdbtest.SeedBook(t, f.db, "Dune", "9780441013593")
	copyID := rdbtest.SeedCopy(t, f.db, bookID, "BC-001")
	rdbtest.SeedReturnedLoan(t, f.db, rdbtest.SeedUser(t, f.db, "alice"), copyID, time.Now().AddDate(0, 0, -30))

	require.NoError(t, f.del.Execute(ctx, bookID))

	_, err := f.get.Execute(ctx, bookID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
	var copies, loans int64
	require.NoError(t, f.db.Model(&rdb.CopyModel{}).Count(&copies).Error)
	require.NoError(t, f.db.Model(&rdb.LoanModel{}).Count(&loans).Error)
	assert.Zero(t, copies)
	assert.Zero(t, loans)

	assert.ErrorIs(t, f.del.Execute(ctx, bookID), catalog.ErrBookNotFound)
}

func TestDeletePublisher_KeepsBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	publisher, err := f.taxonomy.CreatePublisher(ctx, CreatePublisherRequest{Name: "Chilton"})
	require.NoError(t, err)
	book, err := f.create.Execute(ctx, CreateBookRequest{Title: "Dune", ISBN: "9780441013593", PublisherID: &publisher.ID})
	require.NoError(t, err)

	require.NoError(t, f.taxonomy.DeletePublisher(ctx, publisher.ID))

	got, err := f.get.Execute(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Publisher)

	publishers, err := f.taxonomy.ListPublishers(ctx)
	require.NoError(t, err)
	assert.Empty(t, publishers)

	assert.ErrorIs(t, f.taxonomy.DeletePublisher(ctx, publisher.ID), catalog.ErrPublisherNotFound)
}

func TestTaxonomy_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.taxonomy.CreateAuthor(ctx, CreateAuthorRequest{Name: ""})
	assert.ErrorIs(t, err, catalog.ErrInvalidName)
	_, err = f.taxonomy.CreateCategory(ctx, "  ")
	assert.ErrorIs(t, err, catalog.ErrInvalidName)

	_, err = f.taxonomy.CreateCategory(ctx, "Poetry")
	require.NoError(t, err)
	categories, err := f.taxonomy.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Poetry", categories[0].Name)

	authors, err := f.taxonomy.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)
}
