package controller

import (
	"errors"
	"student_performance_backend/internal/service"
	"student_performance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

type UpsertStudentRequest struct {
	StudentID   string `json:"studentId" binding:"required,max=64"`
	Class       string `json:"class" binding:"required,max=20"`
	Combination string `json:"combination" binding:"required,max=20"`
}

type SubmitMarksRequest struct {
	StudentID string         `json:"studentId" binding:"required"`
	Week      int            `json:"week" binding:"required,min=1"`
	Scores    map[string]int `json:"scores" binding:"required,min=1,dive,keys,required,max=64,endkeys,min=0,max=100"`
}

// @Summary Register or update a student
// @Tags students
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpsertStudentRequest true "student"
// @Success 200 {object} util.Response
// @Router /teacher/students [post]
func (c *StudentController) UpsertStudent(ctx *gin.Context) {
	var req UpsertStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.UpsertStudent(ctx.Request.Context(), req.StudentID, req.Class, req.Combination)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// @Summary List students
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /teacher/students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.StudentService.ListStudents(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// @Summary Generate sample students
// @Description Creates Student001..Student005 with sample classes and combinations
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /teacher/students/sample [post]
func (c *StudentController) GenerateSampleStudents(ctx *gin.Context) {
	students, err := c.StudentService.GenerateSampleStudents(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// @Summary Submit weekly marks
// @Description Inserts one mark per subject; earlier submissions are kept
// @Tags marks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SubmitMarksRequest true "marks"
// @Success 201 {object} util.Response
// @Router /teacher/marks [post]
func (c *StudentController) SubmitMarks(ctx *gin.Context) {
	var req SubmitMarksRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	marks, err := c.StudentService.SubmitMarks(ctx.Request.Context(), req.StudentID, req.Week, req.Scores)
	switch {
	case errors.Is(err, util.ErrStudentNotFound):
		util.NotFound(ctx)
		return
	case errors.Is(err, util.ErrInvalidWeek), errors.Is(err, util.ErrNoScores),
		errors.Is(err, util.ErrInvalidSubject), errors.Is(err, util.ErrDuplicateSubject):
		util.BadRequest(ctx, err.Error())
		return
	case err != nil:
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, marks)
}

// @Summary Mark history of a student
// @Tags marks
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "student id"
// @Success 200 {object} util.Response
// @Router /teacher/students/{id}/marks [get]
func (c *StudentController) ListMarks(ctx *gin.Context) {
	marks, err := c.StudentService.ListMarks(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, marks)
}

// @Summary Subject combinations and classes
// @Tags students
// @Produce json
// @Success 200 {object} util.Response
// @Router /combinations [get]
func (c *StudentController) ListCombinations(ctx *gin.Context) {
	combos, classes := c.StudentService.ListCombinations()
	util.Success(ctx, gin.H{"combinations": combos, "classes": classes})
}
