package service

import (
	"context"
	"fmt"
	"math"
	"student_performance_backend/internal/config"
	"student_performance_backend/internal/evaluation"
	"student_performance_backend/internal/model"
	"student_performance_backend/internal/util"
	"student_performance_backend/pkg/logger"
	"student_performance_backend/pkg/monitoring"
	"student_performance_backend/pkg/tracing"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type MarkStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]model.Mark, error)
	ListByStudentWeek(ctx context.Context, studentID string, week int) ([]model.Mark, error)
}

type SummaryStore interface {
	UpsertWeekly(ctx context.Context, report *model.WeeklyReport) error
	UpsertMonthly(ctx context.Context, report *model.MonthlyReport) error
	ListWeekly(ctx context.Context) ([]model.WeeklyReport, error)
	ListMonthly(ctx context.Context) ([]model.MonthlyReport, error)
	ListWeeklyByStudent(ctx context.Context, studentID string) ([]model.WeeklyReport, error)
	FindMonthly(ctx context.Context, studentID string) (*model.MonthlyReport, error)
}

type StudentLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type ReportCache interface {
	Get(ctx context.Context, studentID string) (*model.StudentReports, bool)
	Set(ctx context.Context, reports *model.StudentReports)
	Invalidate(ctx context.Context, studentID string)
}

const (
	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ReportOutcome 批量生成时每个学生的结果
type ReportOutcome struct {
	StudentID string               `json:"studentId"`
	Status    string               `json:"status"`
	Weekly    *model.WeeklyReport  `json:"weekly,omitempty"`
	Monthly   *model.MonthlyReport `json:"monthly,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type ReportService struct {
	MarkRepo    MarkStore
	ReportRepo  SummaryStore
	StudentRepo StudentLister
	Cache       ReportCache

	monthlyPolicy atomic.Value
}

func NewReportService(markRepo MarkStore, reportRepo SummaryStore, studentRepo StudentLister, cache ReportCache, cfg *config.Config) *ReportService {
	s := &ReportService{
		MarkRepo:    markRepo,
		ReportRepo:  reportRepo,
		StudentRepo: studentRepo,
		Cache:       cache,
	}
	s.SetMonthlyPolicy(cfg.Report.MonthlyPolicy)
	return s
}

// SetMonthlyPolicy 配置热更新时调用，未知取值回退为 latest
func (s *ReportService) SetMonthlyPolicy(policy string) {
	if policy != config.MonthlyPolicyAverage {
		policy = config.MonthlyPolicyLatest
	}
	s.monthlyPolicy.Store(policy)
}

func (s *ReportService) MonthlyPolicy() string {
	if p, ok := s.monthlyPolicy.Load().(string); ok {
		return p
	}
	return config.MonthlyPolicyLatest
}

// GenerateWeeklyReport 生成并保存某学生某周的周报。
// 该周没有成绩时返回 nil, nil，不写入任何数据。
func (s *ReportService) GenerateWeeklyReport(ctx context.Context, studentID string, week int) (report *model.WeeklyReport, err error) {
	ctx, span := tracing.StartSpan(ctx, "report.weekly",
		attribute.String("student.id", studentID),
		attribute.Int("report.week", week),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if week < 1 {
		return nil, util.ErrInvalidWeek
	}

	marks, err := s.MarkRepo.ListByStudentWeek(ctx, studentID, week)
	if err != nil {
		s.observe(util.PeriodWeekly, StatusFailed, "")
		return nil, fmt.Errorf("load week %d marks for %s: %w", week, studentID, err)
	}

	scores := latestScores(marks)
	if len(scores) == 0 {
		s.observe(util.PeriodWeekly, StatusSkipped, "")
		logger.Log.Debug("no marks for week, skipping report", zap.String("studentId", studentID), zap.Int("week", week))
		return nil, nil
	}

	res := evaluation.EvaluateInts(scores)
	report = &model.WeeklyReport{
		StudentID:           studentID,
		Week:                week,
		AverageScore:        res.Average,
		PerformanceCategory: string(res.Category),
		Recommendation:      res.Recommendation,
		Feedback:            model.FeedbackMap(res.Feedback),
	}
	if err := s.ReportRepo.UpsertWeekly(ctx, report); err != nil {
		s.observe(util.PeriodWeekly, StatusFailed, "")
		return nil, fmt.Errorf("save weekly report for %s week %d: %w", studentID, week, err)
	}

	s.invalidate(ctx, studentID)
	s.observe(util.PeriodWeekly, StatusGenerated, report.PerformanceCategory)
	logger.Log.Info("weekly report generated",
		zap.String("studentId", studentID),
		zap.Int("week", week),
		zap.Float64("average", report.AverageScore),
		zap.String("category", report.PerformanceCategory),
	)
	return report, nil
}

// GenerateMonthlyReport 根据该学生全部周次的成绩生成月报
func (s *ReportService) GenerateMonthlyReport(ctx context.Context, studentID string) (report *model.MonthlyReport, err error) {
	policy := s.MonthlyPolicy()
	ctx, span := tracing.StartSpan(ctx, "report.monthly",
		attribute.String("student.id", studentID),
		attribute.String("report.policy", policy),
	)
	defer func() { tracing.EndSpan(span, err) }()

	marks, err := s.MarkRepo.ListByStudent(ctx, studentID)
	if err != nil {
		s.observe(util.PeriodMonthly, StatusFailed, "")
		return nil, fmt.Errorf("load marks for %s: %w", studentID, err)
	}

	var scores map[string]int
	if policy == config.MonthlyPolicyAverage {
		scores = averagedScores(marks)
	} else {
		scores = latestScores(marks)
	}
	if len(scores) == 0 {
		s.observe(util.PeriodMonthly, StatusSkipped, "")
		logger.Log.Debug("no marks for student, skipping monthly report", zap.String("studentId", studentID))
		return nil, nil
	}

	res := evaluation.EvaluateInts(scores)
	report = &model.MonthlyReport{
		StudentID:           studentID,
		AverageScore:        res.Average,
		PerformanceCategory: string(res.Category),
		Recommendation:      res.Recommendation,
		Feedback:            model.FeedbackMap(res.Feedback),
	}
	if err := s.ReportRepo.UpsertMonthly(ctx, report); err != nil {
		s.observe(util.PeriodMonthly, StatusFailed, "")
		return nil, fmt.Errorf("save monthly report for %s: %w", studentID, err)
	}

	s.invalidate(ctx, studentID)
	s.observe(util.PeriodMonthly, StatusGenerated, report.PerformanceCategory)
	logger.Log.Info("monthly report generated",
		zap.String("studentId", studentID),
		zap.String("policy", policy),
		zap.Float64("average", report.AverageScore),
		zap.String("category", report.PerformanceCategory),
	)
	return report, nil
}

// GenerateAllReports 批量生成，week 为 nil 时生成月报。
// studentIDs 为空时处理全部已登记学生；单个学生失败不影响其余学生。
func (s *ReportService) GenerateAllReports(ctx context.Context, studentIDs []string, week *int) ([]ReportOutcome, error) {
	if len(studentIDs) == 0 {
		ids, err := s.StudentRepo.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list students: %w", err)
		}
		studentIDs = ids
	}

	outcomes := make([]ReportOutcome, 0, len(studentIDs))
	for _, id := range studentIDs {
		out := ReportOutcome{StudentID: id, Status: StatusSkipped}

		var err error
		if week != nil {
			out.Weekly, err = s.GenerateWeeklyReport(ctx, id, *week)
			if out.Weekly != nil {
				out.Status = StatusGenerated
			}
		} else {
			out.Monthly, err = s.GenerateMonthlyReport(ctx, id)
			if out.Monthly != nil {
				out.Status = StatusGenerated
			}
		}
		if err != nil {
			out.Status = StatusFailed
			out.Error = err.Error()
			logger.Log.Error("report generation failed", zap.String("studentId", id), zap.Error(err))
		}

		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (s *ReportService) ListWeeklyReports(ctx context.Context) ([]model.WeeklyReport, error) {
	return s.ReportRepo.ListWeekly(ctx)
}

func (s *ReportService) ListMonthlyReports(ctx context.Context) ([]model.MonthlyReport, error) {
	return s.ReportRepo.ListMonthly(ctx)
}

// GetStudentReports 家长端查看，优先读缓存
func (s *ReportService) GetStudentReports(ctx context.Context, studentID string) (*model.StudentReports, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, studentID); ok {
			return cached, nil
		}
	}

	weekly, err := s.ReportRepo.ListWeeklyByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.ReportRepo.FindMonthly(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if weekly == nil {
		weekly = []model.WeeklyReport{}
	}

	reports := &model.StudentReports{
		StudentID: studentID,
		Weekly:    weekly,
		Monthly:   monthly,
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, reports)
	}
	return reports, nil
}

func (s *ReportService) invalidate(ctx context.Context, studentID string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, studentID)
	}
}

func (s *ReportService) observe(period, status, category string) {
	monitoring.ObserveReport(period, status, category)
}

// latestScores 同一科目多条记录时取最后一条（按读取顺序）
func latestScores(marks []model.Mark) map[string]int {
	scores := make(map[string]int, len(marks))
	for _, m := range marks {
		scores[m.Subject] = m.Score
	}
	return scores
}

// averagedScores 同一科目跨周取平均，四舍五入为整数
func averagedScores(marks []model.Mark) map[string]int {
	type acc struct{ sum, n int }
	accs := make(map[string]*acc)
	for _, m := range marks {
		a, ok := accs[m.Subject]
		if !ok {
			a = &acc{}
			accs[m.Subject] = a
		}
		a.sum += m.Score
		a.n++
	}

	scores := make(map[string]int, len(accs))
	for subject, a := range accs {
		scores[subject] = int(math.Round(float64(a.sum) / float64(a.n)))
	}
	return scores
}
