package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/user"
)

// ListUsersUseCase 用户列表
type ListUsersUseCase struct {
	userRepo user.Repository
}

func NewListUsersUseCase(userRepo user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	users, total, err := uc.userRepo.List(ctx, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	list := make([]UserInfo, len(users))
	for i, u := range users {
		list[i] = toUserInfo(u)
	}
	return &ListUsersResponse{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// AssignGroupUseCase 分配用户组
// 用户只保留一个用户组,原有的全部替换
type AssignGroupUseCase struct {
	userRepo  user.Repository
	groupRepo user.GroupRepository
	log       *slog.Logger
}

func NewAssignGroupUseCase(userRepo user.Repository, groupRepo user.GroupRepository, log *slog.Logger) *AssignGroupUseCase {
	return &AssignGroupUseCase{userRepo: userRepo, groupRepo: groupRepo, log: log}
}

func (uc *AssignGroupUseCase) Execute(ctx context.Context, req AssignGroupRequest) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	g, err := uc.groupRepo.FindByName(ctx, req.Group)
	if err != nil {
		return nil, err
	}

	if err := uc.userRepo.ReplaceGroups(ctx, u.ID, []uint{g.ID}); err != nil {
		return nil, err
	}
	u.Groups = []string{g.Name}

	uc.log.InfoContext(ctx, "用户组已分配", "user_id", u.ID, "group", g.Name)
	info := toUserInfo(u)
	return &info, nil
}
