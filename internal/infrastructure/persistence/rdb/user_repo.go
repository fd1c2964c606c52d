package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// userRepository 用户仓储实现
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如用户名重复），转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 用户名唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		IsStaff:   u.IsStaff,
		Password:  u.Password,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrUsernameDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).Preload("Groups").First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// FindByUsername 根据用户名查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).Preload("Groups").Where("username = ?", username).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// List 分页查询用户列表
func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	var models []UserModel
	var total int64

	query := r.getDB(ctx).Model(&UserModel{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户总数失败")
	}

	if err := paginate(query, page, pageSize).Preload("Groups").Order("id").Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, total, nil
}

// ReplaceGroups 替换用户的全部用户组
func (r *userRepository) ReplaceGroups(ctx context.Context, userID uint, groupIDs []uint) error {
	db := r.getDB(ctx)

	var model UserModel
	if err := db.First(&model, userID).Error; err != nil {
		if isNotFound(err) {
			return user.ErrUserNotFound
		}
		return apperrors.Wrap(err, "查询用户失败")
	}

	var groups []GroupModel
	if len(groupIDs) > 0 {
		if err := db.Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
			return apperrors.Wrap(err, "查询用户组失败")
		}
		if len(groups) != len(uniqueIDs(groupIDs)) {
			return user.ErrGroupNotFound
		}
	}

	assoc := db.Model(&model).Association("Groups")
	var err error
	if len(groups) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(groups)
	}
	if err != nil {
		return apperrors.Wrap(err, "分配用户组失败")
	}
	return nil
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	groups := make([]string, len(model.Groups))
	for i, g := range model.Groups {
		groups[i] = g.Name
	}

	return &user.User{
		ID:        model.ID,
		Username:  model.Username,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		Phone:     model.Phone,
		Address:   model.Address,
		IsStaff:   model.IsStaff,
		Password:  model.Password,
		Groups:    groups,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// =========================================
// 用户组
// =========================================

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建用户组仓储
func NewGroupRepository(db *gorm.DB) user.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindByName(ctx context.Context, name string) (*user.Group, error) {
	var model GroupModel
	if err := dbFromContext(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户组失败")
	}
	return &user.Group{ID: model.ID, Name: model.Name}, nil
}

func (r *groupRepository) List(ctx context.Context) ([]*user.Group, error) {
	var models []GroupModel
	if err := dbFromContext(ctx, r.db).Order("name").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询用户组列表失败")
	}

	groups := make([]*user.Group, len(models))
	for i, m := range models {
		groups[i] = &user.Group{ID: m.ID, Name: m.Name}
	}
	return groups, nil
}

// EnsureExists 不存在则创建
func (r *groupRepository) EnsureExists(ctx context.Context, names ...string) error {
	db := dbFromContext(ctx, r.db)
	for _, name := range names {
		if err := db.Where(GroupModel{Name: name}).FirstOrCreate(&GroupModel{}).Error; err != nil {
			return apperrors.Wrap(err, "初始化用户组失败")
		}
	}
	return nil
}
