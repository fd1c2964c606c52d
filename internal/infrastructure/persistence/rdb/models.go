package rdb

import (
	"time"

	"github.com/shopspring/decimal"
)

// GORM数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM，Repository负责两者之间的转换
// 3. 唯一性约束（ISBN、条码、用户名、每笔借阅一条罚款、候补名单）全部由数据库索引保证
// 4. 借阅、罚款等记录不做软删除（审计留痕）

// GroupModel 用户组
type GroupModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:150;not null;comment:用户组名"`
}

func (GroupModel) TableName() string {
	return "auth_groups"
}

// UserModel 用户
type UserModel struct {
	ID        uint         `gorm:"primaryKey"`
	Username  string       `gorm:"uniqueIndex;size:150;not null;comment:用户名"`
	FirstName string       `gorm:"size:150;comment:名"`
	LastName  string       `gorm:"size:150;comment:姓"`
	Email     string       `gorm:"size:254;comment:邮箱"`
	Phone     string       `gorm:"size:20;comment:电话"`
	Address   string       `gorm:"size:255;comment:地址"`
	IsStaff   bool         `gorm:"not null;default:false;comment:是否馆员"`
	Password  string       `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Groups    []GroupModel `gorm:"many2many:user_auth_groups;joinForeignKey:UserID;joinReferences:GroupID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// AuthorModel 作者
type AuthorModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null;comment:姓名"`
	Biography string `gorm:"type:text;comment:简介"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AuthorModel) TableName() string {
	return "authors"
}

// PublisherModel 出版社
type PublisherModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null;comment:名称"`
	Address   string `gorm:"size:255;comment:地址"`
	Website   string `gorm:"size:255;comment:网站"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PublisherModel) TableName() string {
	return "publishers"
}

// CategoryModel 分类
type CategoryModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;comment:分类名"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CategoryModel) TableName() string {
	return "categories"
}

// BookModel 图书
// ISBN存规范化后的纯数字，唯一索引防止重复
type BookModel struct {
	ID              uint            `gorm:"primaryKey"`
	Title           string          `gorm:"index;size:200;not null;comment:书名"`
	ISBN            string          `gorm:"uniqueIndex;size:13;not null;comment:ISBN号"`
	PublicationDate *time.Time      `gorm:"comment:出版日期"`
	Synopsis        string          `gorm:"type:text;comment:简介"`
	PublisherID     *uint           `gorm:"index;comment:出版社ID"`
	Publisher       *PublisherModel `gorm:"foreignKey:PublisherID;constraint:OnDelete:SET NULL"`
	Authors         []AuthorModel   `gorm:"many2many:book_authors;joinForeignKey:BookID;joinReferences:AuthorID"`
	Categories      []CategoryModel `gorm:"many2many:book_categories;joinForeignKey:BookID;joinReferences:CategoryID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// CopyModel 馆藏副本
// condition是MySQL保留字，列名使用copy_condition
type CopyModel struct {
	ID        uint   `gorm:"primaryKey"`
	BookID    uint   `gorm:"index;not null;comment:图书ID"`
	Barcode   string `gorm:"uniqueIndex;size:64;not null;comment:条码"`
	Location  string `gorm:"size:100;comment:馆藏位置"`
	Format    string `gorm:"size:16;not null;comment:形态(physical/digital)"`
	Condition string `gorm:"column:copy_condition;size:16;not null;comment:品相(new/good/damaged)"`
	Status    string `gorm:"index;size:16;not null;default:available;comment:状态(available/loaned)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CopyModel) TableName() string {
	return "copies"
}

// LoanModel 借阅记录
type LoanModel struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"index;not null;comment:借阅人ID"`
	CopyID     uint       `gorm:"index;not null;comment:副本ID"`
	LoanDate   time.Time  `gorm:"not null;comment:借出时间"`
	ReturnDate *time.Time `gorm:"comment:归还时间"`
	Returned   bool       `gorm:"index;not null;default:false;comment:是否已归还"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (LoanModel) TableName() string {
	return "loans"
}

// FineModel 罚款
// loan_id唯一索引保证每笔借阅最多一条罚款
type FineModel struct {
	ID        uint            `gorm:"primaryKey"`
	LoanID    uint            `gorm:"uniqueIndex;not null;comment:借阅ID"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:金额"`
	Paid      bool            `gorm:"not null;default:false;comment:是否已缴纳"`
	PaidAt    *time.Time      `gorm:"comment:缴纳时间"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FineModel) TableName() string {
	return "fines"
}

// ReservationModel 预约
type ReservationModel struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"index;not null;comment:用户ID"`
	CopyID          uint      `gorm:"index;not null;comment:副本ID"`
	ReservationDate time.Time `gorm:"not null;comment:预约时间"`
	Active          bool      `gorm:"not null;default:true;comment:是否有效"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ReservationModel) TableName() string {
	return "reservations"
}

// WaitlistEntryModel 候补名单
// 两个联合唯一索引：(reservation_id, user_id)防止重复登记，(reservation_id, position)保证位置唯一
type WaitlistEntryModel struct {
	ID            uint `gorm:"primaryKey"`
	ReservationID uint `gorm:"not null;uniqueIndex:idx_waitlist_user,priority:1;uniqueIndex:idx_waitlist_position,priority:1;comment:预约ID"`
	UserID        uint `gorm:"not null;uniqueIndex:idx_waitlist_user,priority:2;comment:用户ID"`
	Position      int  `gorm:"not null;uniqueIndex:idx_waitlist_position,priority:2;comment:位置(从1开始)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (WaitlistEntryModel) TableName() string {
	return "waitlist_entries"
}
