package handler

import (
	"github.com/gin-gonic/gin"

	appreservation "github.com/xiebiao/library/internal/application/reservation"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// ReservationHandler 预约与候补名单
type ReservationHandler struct {
	create *appreservation.CreateReservationUseCase
	cancel *appreservation.CancelReservationUseCase
	mine   *appreservation.ListUserReservationsUseCase
	join   *appreservation.JoinWaitlistUseCase
	leave  *appreservation.LeaveWaitlistUseCase
	list   *appreservation.ListWaitlistUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	create *appreservation.CreateReservationUseCase,
	cancel *appreservation.CancelReservationUseCase,
	mine *appreservation.ListUserReservationsUseCase,
	join *appreservation.JoinWaitlistUseCase,
	leave *appreservation.LeaveWaitlistUseCase,
	list *appreservation.ListWaitlistUseCase,
) *ReservationHandler {
	return &ReservationHandler{create: create, cancel: cancel, mine: mine, join: join, leave: leave, list: list}
}

// Create 创建预约
// @Summary      创建预约
// @Description  不要求副本可借;不会自动加入候补名单
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateReservationRequest true "预约信息"
// @Success      201 {object} response.Response{data=appreservation.ReservationResponse}
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := actingUserID(c, req.UserID)
	if !ok {
		return
	}
	result, err := h.create.Execute(c.Request.Context(), appreservation.CreateReservationRequest{
		UserID: userID,
		CopyID: req.CopyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Mine 当前用户的预约
// @Summary      我的预约
// @Tags         预约
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appreservation.ReservationResponse}
// @Router       /api/v1/reservations/mine [get]
func (h *ReservationHandler) Mine(c *gin.Context) {
	result, err := h.mine.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 取消预约
// @Summary      取消预约
// @Description  只能取消自己的预约,馆员可取消任何人的
// @Tags         预约
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, _ := middleware.GetPrincipal(c)
	err := h.cancel.Execute(c.Request.Context(), appreservation.CancelReservationRequest{
		ReservationID: id,
		ActorID:       p.UserID,
		AllowAny:      p.Can(middleware.PermViewUser),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// JoinWaitlist 加入候补名单
// @Summary      加入候补
// @Tags         预约
// @Accept       json
// @Security     BearerAuth
// @Param        id      path int                 true  "预约ID"
// @Param        request body dto.WaitlistRequest false "候补用户(默认当前用户)"
// @Success      201 {object} response.Response{data=appreservation.WaitlistEntryResponse}
// @Failure      409 {object} response.Response "已在候补名单中"
// @Router       /api/v1/reservations/{id}/waitlist [post]
func (h *ReservationHandler) JoinWaitlist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.WaitlistRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	userID, ok := actingUserID(c, req.UserID)
	if !ok {
		return
	}
	result, err := h.join.Execute(c.Request.Context(), appreservation.WaitlistRequest{
		ReservationID: id,
		UserID:        userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// LeaveWaitlist 退出候补名单,后面的用户依次前移
// @Summary      退出候补
// @Tags         预约
// @Security     BearerAuth
// @Param        id      path  int true  "预约ID"
// @Param        user_id query int false "候补用户(默认当前用户)"
// @Success      200 {object} response.Response
// @Router       /api/v1/reservations/{id}/waitlist [delete]
func (h *ReservationHandler) LeaveWaitlist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.WaitlistRequest
	if !bindQuery(c, &q) {
		return
	}
	userID, ok := actingUserID(c, q.UserID)
	if !ok {
		return
	}
	err := h.leave.Execute(c.Request.Context(), appreservation.WaitlistRequest{
		ReservationID: id,
		UserID:        userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListWaitlist 候补名单(按位置升序)
// @Summary      候补名单
// @Tags         预约
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=[]appreservation.WaitlistEntryResponse}
// @Router       /api/v1/reservations/{id}/waitlist [get]
func (h *ReservationHandler) ListWaitlist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.list.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
