package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// CatalogHandler 图书、副本、作者、出版社、分类
type CatalogHandler struct {
	createBook *appcatalog.CreateBookUseCase
	getBook    *appcatalog.GetBookUseCase
	listBooks  *appcatalog.ListBooksUseCase
	deleteBook *appcatalog.DeleteBookUseCase
	taxonomy   *appcatalog.TaxonomyUseCase
	copies     *appcatalog.CopyUseCase
}

// NewCatalogHandler 创建馆藏处理器
func NewCatalogHandler(
	createBook *appcatalog.CreateBookUseCase,
	getBook *appcatalog.GetBookUseCase,
	listBooks *appcatalog.ListBooksUseCase,
	deleteBook *appcatalog.DeleteBookUseCase,
	taxonomy *appcatalog.TaxonomyUseCase,
	copies *appcatalog.CopyUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		createBook: createBook,
		getBook:    getBook,
		listBooks:  listBooks,
		deleteBook: deleteBook,
		taxonomy:   taxonomy,
		copies:     copies,
	}
}

// CreateBook 新增图书
// @Summary      新增图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appcatalog.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *CatalogHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	var published *time.Time
	if req.PublicationDate != "" {
		t, err := time.Parse(time.DateOnly, req.PublicationDate)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "出版日期格式应为YYYY-MM-DD")
			return
		}
		published = &t
	}

	result, err := h.createBook.Execute(c.Request.Context(), appcatalog.CreateBookRequest{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationDate: published,
		Synopsis:        req.Synopsis,
		PublisherID:     req.PublisherID,
		AuthorIDs:       req.AuthorIDs,
		CategoryIDs:     req.CategoryIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appcatalog.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        page        query int    false "页码"
// @Param        page_size   query int    false "每页数量"
// @Param        keyword     query string false "书名或ISBN"
// @Param        category_id query int    false "分类ID"
// @Success      200 {object} response.Response{data=appcatalog.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.listBooks.Execute(c.Request.Context(), appcatalog.ListBooksRequest{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Keyword:    q.Keyword,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书(级联删除副本及借阅记录)
// @Summary      删除图书
// @Tags         图书
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id} [delete]
func (h *CatalogHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RegisterCopy 登记副本
// @Summary      登记副本
// @Tags         副本
// @Accept       json
// @Security     BearerAuth
// @Param        id      path int                     true "图书ID"
// @Param        request body dto.RegisterCopyRequest true "副本信息"
// @Success      201 {object} response.Response{data=appcatalog.CopyResponse}
// @Failure      409 {object} response.Response "条码已存在"
// @Router       /api/v1/books/{id}/copies [post]
func (h *CatalogHandler) RegisterCopy(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RegisterCopyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.copies.RegisterCopy(c.Request.Context(), appcatalog.RegisterCopyRequest{
		BookID:    bookID,
		Barcode:   req.Barcode,
		Location:  req.Location,
		Format:    req.Format,
		Condition: req.Condition,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListCopies 图书的副本
// @Summary      副本列表
// @Tags         副本
// @Security     BearerAuth
// @Param        id             path  int  true  "图书ID"
// @Param        available_only query bool false "只看可借"
// @Success      200 {object} response.Response{data=[]appcatalog.CopyResponse}
// @Router       /api/v1/books/{id}/copies [get]
func (h *CatalogHandler) ListCopies(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.ListCopiesQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.copies.ListCopies(c.Request.Context(), bookID, q.AvailableOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCopyCondition 更新副本品相
// @Summary      更新副本品相
// @Tags         副本
// @Accept       json
// @Security     BearerAuth
// @Param        id      path int                        true "副本ID"
// @Param        request body dto.UpdateConditionRequest true "品相"
// @Success      200 {object} response.Response{data=appcatalog.CopyResponse}
// @Router       /api/v1/copies/{id}/condition [put]
func (h *CatalogHandler) UpdateCopyCondition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateConditionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.copies.UpdateCondition(c.Request.Context(), id, req.Condition)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// =========================================
// 作者、出版社、分类
// =========================================

func (h *CatalogHandler) CreateAuthor(c *gin.Context) {
	var req dto.CreateAuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.taxonomy.CreateAuthor(c.Request.Context(), appcatalog.CreateAuthorRequest{
		Name:      req.Name,
		Biography: req.Biography,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	result, err := h.taxonomy.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *CatalogHandler) CreatePublisher(c *gin.Context) {
	var req dto.CreatePublisherRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.taxonomy.CreatePublisher(c.Request.Context(), appcatalog.CreatePublisherRequest{
		Name:    req.Name,
		Address: req.Address,
		Website: req.Website,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *CatalogHandler) ListPublishers(c *gin.Context) {
	result, err := h.taxonomy.ListPublishers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeletePublisher 删除出版社,名下图书的出版社置空
func (h *CatalogHandler) DeletePublisher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeletePublisher(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.taxonomy.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	result, err := h.taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
