package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"student_performance_backend/internal/config"
	"student_performance_backend/internal/model"
	"student_performance_backend/internal/repository"
	"student_performance_backend/internal/service"
	"student_performance_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "controller-test-secret", ExpireTime: time.Hour},
		Report: config.ReportConfig{MonthlyPolicy: config.MonthlyPolicyLatest},
	}
	require.NoError(t, database.SeedAccounts(db, []config.AccountConfig{
		{Email: "teacher@school.com", Password: "teacher123", Role: string(model.Teacher)},
	}))

	studentRepo := repository.NewStudentRepository(db)
	markRepo := repository.NewMarkRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authCtl := NewAuthController(service.NewAuthService(repository.NewUserRepository(db), cfg))
	studentCtl := NewStudentController(service.NewStudentService(studentRepo, markRepo))
	reportCtl := NewReportController(service.NewReportService(markRepo, reportRepo, studentRepo, nil, cfg))
	healthCtl := NewHealthController(db, nil)

	r := gin.New()
	r.GET("/health", healthCtl.HealthCheck)
	r.POST("/login", authCtl.Login)
	r.GET("/combinations", studentCtl.ListCombinations)
	r.POST("/evaluate", reportCtl.Evaluate)
	r.POST("/students", studentCtl.UpsertStudent)
	r.GET("/students", studentCtl.ListStudents)
	r.POST("/students/sample", studentCtl.GenerateSampleStudents)
	r.POST("/marks", studentCtl.SubmitMarks)
	r.GET("/students/:id/marks", studentCtl.ListMarks)
	r.POST("/students/:id/reports/weekly/:week", reportCtl.GenerateWeekly)
	r.POST("/students/:id/reports/monthly", reportCtl.GenerateMonthly)
	r.POST("/reports/weekly/:week", reportCtl.BatchWeekly)
	r.POST("/reports/monthly", reportCtl.BatchMonthly)
	r.GET("/reports/weekly", reportCtl.ListWeekly)
	r.GET("/reports/monthly", reportCtl.ListMonthly)
	r.GET("/students/:id/reports", reportCtl.GetStudentReports)

	return &testServer{router: r, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"database":"up"`)
	assert.Contains(t, string(env.Data), `"cache":"disabled"`)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/login", gin.H{"email": "Teacher@School.com", "password": "teacher123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res service.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.Teacher, res.Role)

	rec, _ = s.do(t, http.MethodPost, "/login", gin.H{"email": "teacher@school.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/login", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/evaluate", gin.H{
		"scores": gin.H{"Math": 30, "Physics": 20, "Geography": 45, "Art": "absent"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Average        float64  `json:"average"`
		Category       string   `json:"category"`
		Recommendation string   `json:"recommendation"`
		Dropped        []string `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 31.67, res.Average)
	assert.Equal(t, "At Risk", res.Category)
	assert.Contains(t, res.Recommendation, "high risk of repeating the class")
	assert.Equal(t, []string{"Art"}, res.Dropped)

	_, env = s.do(t, http.MethodPost, "/evaluate", gin.H{"list": []int{95, 92, 98}})
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 95.0, res.Average)
	assert.Equal(t, "Outstanding", res.Category)
}

func TestStudentsAndMarks(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/students", gin.H{"studentId": "Student001", "class": "S4", "combination": "mpg"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/students", gin.H{"studentId": "Student002"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, env := s.do(t, http.MethodGet, "/students", nil)
	var students []model.Student
	require.NoError(t, json.Unmarshal(env.Data, &students))
	require.Len(t, students, 1)
	assert.Equal(t, "MPG", students[0].Combination)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 1, "scores": gin.H{"Math": 80, "Physics": 70}})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 1, "scores": gin.H{"Math": 120}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 0, "scores": gin.H{"Math": 50}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Ghost", "week": 1, "scores": gin.H{"Math": 50}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 1, "scores": gin.H{" ": 50}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 1, "scores": gin.H{" Math": 50, "Math": 60}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, env = s.do(t, http.MethodGet, "/students/Student001/marks", nil)
	var marks []model.Mark
	require.NoError(t, json.Unmarshal(env.Data, &marks))
	assert.Len(t, marks, 2)

	rec, env = s.do(t, http.MethodPost, "/students/sample", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &students))
	assert.Len(t, students, 5)
	assert.Equal(t, "Student001", students[0].StudentID)

	rec, env = s.do(t, http.MethodGet, "/combinations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "MPG")
}

func TestGenerateReports(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/students", gin.H{"studentId": "Student001", "class": "S4", "combination": "MPG"})
	s.do(t, http.MethodPost, "/students", gin.H{"studentId": "Student002", "class": "S5", "combination": "PCM"})
	s.do(t, http.MethodPost, "/marks", gin.H{"studentId": "Student001", "week": 1, "scores": gin.H{"Math": 95, "Physics": 92, "Geography": 98}})

	rec, env := s.do(t, http.MethodPost, "/students/Student001/reports/weekly/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var weekly model.WeeklyReport
	require.NoError(t, json.Unmarshal(env.Data, &weekly))
	assert.Equal(t, 95.0, weekly.AverageScore)
	assert.Equal(t, "Outstanding", weekly.PerformanceCategory)

	rec, env = s.do(t, http.MethodPost, "/students/Student002/reports/weekly/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"generated": false}`, string(env.Data))

	rec, _ = s.do(t, http.MethodPost, "/students/Student001/reports/weekly/zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/students/Student001/reports/monthly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var monthly model.MonthlyReport
	require.NoError(t, json.Unmarshal(env.Data, &monthly))
	assert.Equal(t, 95.0, monthly.AverageScore)

	// 批量：不传请求体时处理全部学生
	rec, env = s.do(t, http.MethodPost, "/reports/weekly/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcomes []service.ReportOutcome
	require.NoError(t, json.Unmarshal(env.Data, &outcomes))
	require.Len(t, outcomes, 2)
	byID := map[string]string{}
	for _, o := range outcomes {
		byID[o.StudentID] = o.Status
	}
	assert.Equal(t, service.StatusGenerated, byID["Student001"])
	assert.Equal(t, service.StatusSkipped, byID["Student002"])

	rec, env = s.do(t, http.MethodPost, "/reports/monthly", gin.H{"studentIds": []string{"Student002"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, service.StatusSkipped, outcomes[0].Status)

	_, env = s.do(t, http.MethodGet, "/reports/weekly", nil)
	var weeklies []model.WeeklyReport
	require.NoError(t, json.Unmarshal(env.Data, &weeklies))
	assert.Len(t, weeklies, 1)

	_, env = s.do(t, http.MethodGet, "/reports/monthly", nil)
	var monthlies []model.MonthlyReport
	require.NoError(t, json.Unmarshal(env.Data, &monthlies))
	assert.Len(t, monthlies, 1)

	_, env = s.do(t, http.MethodGet, "/students/Student001/reports", nil)
	var reports model.StudentReports
	require.NoError(t, json.Unmarshal(env.Data, &reports))
	assert.Len(t, reports.Weekly, 1)
	require.NotNil(t, reports.Monthly)
	assert.Equal(t, "Outstanding", reports.Monthly.PerformanceCategory)
}
