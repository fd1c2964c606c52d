package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// reservationRepository 预约仓储实现
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := &ReservationModel{
		UserID:          res.UserID,
		CopyID:          res.CopyID,
		ReservationDate: res.ReservationDate,
		Active:          res.Active,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建预约失败")
	}

	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	res.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "查询预约失败")
	}
	return toReservationEntity(&model), nil
}

// LockByID SELECT ... FOR UPDATE
// 锁住预约行后再计算max(position)+1,同一预约的并发加入候补被串行化
func (r *reservationRepository) LockByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.Wrap(err, "锁定预约失败")
	}
	return toReservationEntity(&model), nil
}

// Deactivate 取消预约
func (r *reservationRepository) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Model(&ReservationModel{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "取消预约失败")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&ReservationModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询预约失败")
		}
		if count == 0 {
			return reservation.ErrReservationNotFound
		}
		return reservation.ErrReservationInactive
	}
	return nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID uint) ([]*reservation.Reservation, error) {
	var models []ReservationModel
	err := r.getDB(ctx).
		Where("user_id = ?", userID).
		Order("reservation_date DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询预约列表失败")
	}

	list := make([]*reservation.Reservation, len(models))
	for i := range models {
		list[i] = toReservationEntity(&models[i])
	}
	return list, nil
}

func (r *reservationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toReservationEntity(m *ReservationModel) *reservation.Reservation {
	return &reservation.Reservation{
		ID:              m.ID,
		UserID:          m.UserID,
		CopyID:          m.CopyID,
		ReservationDate: m.ReservationDate,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// =========================================
// 候补名单
// =========================================

// waitlistRepository 候补名单仓储实现
type waitlistRepository struct {
	db *gorm.DB
}

// NewWaitlistRepository 创建候补名单仓储
func NewWaitlistRepository(db *gorm.DB) reservation.WaitlistRepository {
	return &waitlistRepository{db: db}
}

// Create 创建候补条目
// (reservation_id, user_id)或(reservation_id, position)冲突都视为重复登记
func (r *waitlistRepository) Create(ctx context.Context, e *reservation.WaitlistEntry) error {
	model := &WaitlistEntryModel{
		ReservationID: e.ReservationID,
		UserID:        e.UserID,
		Position:      e.Position,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return reservation.ErrDuplicateEntry
		}
		return apperrors.Wrap(err, "加入候补名单失败")
	}

	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	e.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *waitlistRepository) Exists(ctx context.Context, reservationID, userID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&WaitlistEntryModel{}).
		Where("reservation_id = ? AND user_id = ?", reservationID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询候补名单失败")
	}
	return count > 0, nil
}

// MaxPosition SELECT COALESCE(MAX(position), 0) ...
func (r *waitlistRepository) MaxPosition(ctx context.Context, reservationID uint) (int, error) {
	var maxPos int
	err := r.getDB(ctx).Model(&WaitlistEntryModel{}).
		Where("reservation_id = ?", reservationID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询候补位置失败")
	}
	return maxPos, nil
}

// ListByReservation 按position升序
func (r *waitlistRepository) ListByReservation(ctx context.Context, reservationID uint) ([]*reservation.WaitlistEntry, error) {
	var models []WaitlistEntryModel
	err := r.getDB(ctx).
		Where("reservation_id = ?", reservationID).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询候补名单失败")
	}

	entries := make([]*reservation.WaitlistEntry, len(models))
	for i := range models {
		entries[i] = toWaitlistEntity(&models[i])
	}
	return entries, nil
}

func (r *waitlistRepository) FindByReservationAndUser(ctx context.Context, reservationID, userID uint) (*reservation.WaitlistEntry, error) {
	var model WaitlistEntryModel
	err := r.getDB(ctx).
		Where("reservation_id = ? AND user_id = ?", reservationID, userID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "查询候补名单失败")
	}
	return toWaitlistEntity(&model), nil
}

func (r *waitlistRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&WaitlistEntryModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "移出候补名单失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrEntryNotFound
	}
	return nil
}

func (r *waitlistRepository) UpdatePosition(ctx context.Context, id uint, position int) error {
	err := r.getDB(ctx).Model(&WaitlistEntryModel{}).
		Where("id = ?", id).
		Update("position", position).Error
	if err != nil {
		return apperrors.Wrap(err, "更新候补位置失败")
	}
	return nil
}

// HeadForCopy 查询副本的候补队首
// 多个有效预约时取预约时间最早的一个,其position=1的条目即队首
func (r *waitlistRepository) HeadForCopy(ctx context.Context, copyID uint) (*reservation.WaitlistEntry, error) {
	var model WaitlistEntryModel
	err := r.getDB(ctx).
		Joins("JOIN reservations ON reservations.id = waitlist_entries.reservation_id").
		Where("reservations.copy_id = ? AND reservations.active = ?", copyID, true).
		Where("waitlist_entries.position = ?", 1).
		Order("reservations.reservation_date ASC").
		Order("reservations.id ASC").
		Take(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "查询候补队首失败")
	}
	return toWaitlistEntity(&model), nil
}

func (r *waitlistRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toWaitlistEntity(m *WaitlistEntryModel) *reservation.WaitlistEntry {
	return &reservation.WaitlistEntry{
		ID:            m.ID,
		ReservationID: m.ReservationID,
		UserID:        m.UserID,
		Position:      m.Position,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
