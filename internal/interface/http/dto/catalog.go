package dto

// CreateBookRequest 新增图书
type CreateBookRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	ISBN            string `json:"isbn" binding:"required"`
	PublicationDate string `json:"publication_date" binding:"omitempty,datetime=2006-01-02"`
	Synopsis        string `json:"synopsis"`
	PublisherID     *uint  `json:"publisher_id"`
	AuthorIDs       []uint `json:"author_ids"`
	CategoryIDs     []uint `json:"category_ids"`
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	PageQuery
	Keyword    string `form:"keyword"`
	CategoryID uint   `form:"category_id"`
}

// CreateAuthorRequest 新增作者
type CreateAuthorRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Biography string `json:"biography"`
}

// CreatePublisherRequest 新增出版社
type CreatePublisherRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address"`
	Website string `json:"website" binding:"omitempty,url"`
}

// CreateCategoryRequest 新增分类
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// RegisterCopyRequest 登记副本
type RegisterCopyRequest struct {
	Barcode   string `json:"barcode" binding:"required,max=64"`
	Location  string `json:"location" binding:"max=255"`
	Format    string `json:"format" binding:"omitempty,oneof=physical digital"`
	Condition string `json:"condition" binding:"omitempty,oneof=new good damaged"`
}

// UpdateConditionRequest 更新副本品相
type UpdateConditionRequest struct {
	Condition string `json:"condition" binding:"required,oneof=new good damaged"`
}

// ListCopiesQuery 副本列表查询参数
type ListCopiesQuery struct {
	AvailableOnly bool `form:"available_only"`
}
