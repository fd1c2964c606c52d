package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LendingHandler 借阅、归还与罚款
type LendingHandler struct {
	registerLoan *lending.RegisterLoanUseCase
	returnLoan   *lending.ReturnLoanUseCase
	assessFine   *lending.AssessFineUseCase
	payFine      *lending.PayFineUseCase
	listLoans    *lending.ListLoansUseCase
}

// NewLendingHandler 创建借阅处理器
func NewLendingHandler(
	registerLoan *lending.RegisterLoanUseCase,
	returnLoan *lending.ReturnLoanUseCase,
	assessFine *lending.AssessFineUseCase,
	payFine *lending.PayFineUseCase,
	listLoans *lending.ListLoansUseCase,
) *LendingHandler {
	return &LendingHandler{
		registerLoan: registerLoan,
		returnLoan:   returnLoan,
		assessFine:   assessFine,
		payFine:      payFine,
		listLoans:    listLoans,
	}
}

// RegisterLoan 借出登记
// @Summary      借出登记
// @Description  副本必须处于可借状态;两人同时借同一副本时只有一人成功
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterLoanRequest true "借阅人与副本"
// @Success      201 {object} response.Response{data=lending.LoanResponse}
// @Failure      404 {object} response.Response "用户或副本不存在"
// @Failure      409 {object} response.Response "副本不可借"
// @Router       /api/v1/loans [post]
func (h *LendingHandler) RegisterLoan(c *gin.Context) {
	var req dto.RegisterLoanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.registerLoan.Execute(c.Request.Context(), lending.RegisterLoanRequest{
		UserID: req.UserID,
		CopyID: req.CopyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ReturnLoan 归还登记
// @Summary      归还登记
// @Description  归还后核算罚款,并通知该副本候补队首
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=lending.ReturnLoanResponse}
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Failure      409 {object} response.Response "已归还"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LendingHandler) ReturnLoan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.returnLoan.Execute(c.Request.Context(), lending.ReturnLoanRequest{LoanID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AssessFine 核算罚款(幂等)
// @Summary      核算罚款
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=lending.FineResponse}
// @Router       /api/v1/loans/{id}/fine [post]
func (h *LendingHandler) AssessFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.assessFine.Execute(c.Request.Context(), lending.AssessFineRequest{LoanID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PayFine 缴纳罚款
// @Summary      缴纳罚款
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "罚款ID"
// @Success      200 {object} response.Response{data=lending.FineResponse}
// @Failure      409 {object} response.Response "罚款已缴纳"
// @Router       /api/v1/fines/{id}/pay [post]
func (h *LendingHandler) PayFine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.payFine.Execute(c.Request.Context(), lending.PayFineRequest{FineID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListLoans 借阅列表
// @Summary      借阅列表
// @Description  馆员可查看全部或指定用户;其他人只能看自己的借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int  false "借阅人"
// @Param        open_only query bool false "只看未归还"
// @Param        page      query int  false "页码"
// @Param        page_size query int  false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/loans [get]
func (h *LendingHandler) ListLoans(c *gin.Context) {
	var q dto.ListLoansQuery
	if !bindQuery(c, &q) {
		return
	}
	userID := q.UserID
	if p, _ := middleware.GetPrincipal(c); !p.Can(middleware.PermViewUser) {
		var ok bool
		if userID, ok = actingUserID(c, q.UserID); !ok {
			return
		}
	}
	result, err := h.listLoans.Execute(c.Request.Context(), lending.ListLoansRequest{
		UserID:   userID,
		OpenOnly: q.OpenOnly,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Loans, result.Total, result.Page, result.PageSize)
}
