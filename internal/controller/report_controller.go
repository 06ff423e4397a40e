package controller

import (
	"errors"
	"io"
	"student_performance_backend/internal/evaluation"
	"student_performance_backend/internal/service"
	"student_performance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// EvaluateRequest scores 为科目到成绩的映射；只传 list 时科目名自动生成
type EvaluateRequest struct {
	Scores map[string]any `json:"scores"`
	List   []int          `json:"list"`
}

type BatchRequest struct {
	StudentIDs []string `json:"studentIds"`
}

// @Summary Evaluate scores
// @Description Stateless evaluation; malformed scores are dropped
// @Tags reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EvaluateRequest true "scores"
// @Success 200 {object} util.Response
// @Router /evaluate [post]
func (c *ReportController) Evaluate(ctx *gin.Context) {
	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if len(req.Scores) == 0 && len(req.List) > 0 {
		util.Success(ctx, evaluation.EvaluateList(req.List))
		return
	}
	util.Success(ctx, evaluation.Evaluate(req.Scores))
}

// @Summary Generate a weekly report for one student
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "student id"
// @Param week path int true "week number"
// @Success 200 {object} util.Response
// @Router /teacher/students/{id}/reports/weekly/{week} [post]
func (c *ReportController) GenerateWeekly(ctx *gin.Context) {
	week, err := util.ParseWeek(ctx.Param("week"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	report, err := c.ReportService.GenerateWeeklyReport(ctx.Request.Context(), ctx.Param("id"), week)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if report == nil {
		util.Success(ctx, gin.H{"generated": false})
		return
	}
	util.Success(ctx, report)
}

// @Summary Generate the monthly report for one student
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "student id"
// @Success 200 {object} util.Response
// @Router /teacher/students/{id}/reports/monthly [post]
func (c *ReportController) GenerateMonthly(ctx *gin.Context) {
	report, err := c.ReportService.GenerateMonthlyReport(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if report == nil {
		util.Success(ctx, gin.H{"generated": false})
		return
	}
	util.Success(ctx, report)
}

// @Summary Generate weekly reports in batch
// @Description Empty or missing studentIds covers every registered student
// @Tags reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param week path int true "week number"
// @Param body body BatchRequest false "students"
// @Success 200 {object} util.Response
// @Router /teacher/reports/weekly/{week} [post]
func (c *ReportController) BatchWeekly(ctx *gin.Context) {
	week, err := util.ParseWeek(ctx.Param("week"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req, ok := bindBatch(ctx)
	if !ok {
		return
	}

	outcomes, err := c.ReportService.GenerateAllReports(ctx.Request.Context(), req.StudentIDs, &week)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, outcomes)
}

// @Summary Generate monthly reports in batch
// @Tags reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body BatchRequest false "students"
// @Success 200 {object} util.Response
// @Router /teacher/reports/monthly [post]
func (c *ReportController) BatchMonthly(ctx *gin.Context) {
	req, ok := bindBatch(ctx)
	if !ok {
		return
	}

	outcomes, err := c.ReportService.GenerateAllReports(ctx.Request.Context(), req.StudentIDs, nil)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, outcomes)
}

// @Summary List weekly reports
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /reports/weekly [get]
func (c *ReportController) ListWeekly(ctx *gin.Context) {
	reports, err := c.ReportService.ListWeeklyReports(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reports)
}

// @Summary List monthly reports
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /reports/monthly [get]
func (c *ReportController) ListMonthly(ctx *gin.Context) {
	reports, err := c.ReportService.ListMonthlyReports(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reports)
}

// @Summary Reports of one student
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "student id"
// @Success 200 {object} util.Response
// @Router /students/{id}/reports [get]
func (c *ReportController) GetStudentReports(ctx *gin.Context) {
	reports, err := c.ReportService.GetStudentReports(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, reports)
}

// 请求体可省略
func bindBatch(ctx *gin.Context) (BatchRequest, bool) {
	var req BatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return req, false
	}
	return req, true
}
