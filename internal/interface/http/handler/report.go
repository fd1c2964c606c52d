package handler

import (
	"github.com/gin-gonic/gin"

	appreport "github.com/xiebiao/library/internal/application/report"
	"github.com/xiebiao/library/pkg/response"
)

// ReportHandler 借阅排行榜
type ReportHandler struct {
	top *appreport.TopUseCase
}

func NewReportHandler(top *appreport.TopUseCase) *ReportHandler {
	return &ReportHandler{top: top}
}

// TopBooks 借阅次数前10的图书
// @Summary      热门图书
// @Tags         报表
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]report.BookLoanCount}
// @Router       /api/v1/reports/top-books [get]
func (h *ReportHandler) TopBooks(c *gin.Context) {
	rows, err := h.top.TopBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}

// TopUsers 借阅次数前10的用户
// @Summary      活跃读者
// @Tags         报表
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]report.UserLoanCount}
// @Router       /api/v1/reports/top-users [get]
func (h *ReportHandler) TopUsers(c *gin.Context) {
	rows, err := h.top.TopUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}
