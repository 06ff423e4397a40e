package repository

import (
	"context"
	"errors"
	"student_performance_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var reportColumns = []string{"average_score", "performance_category", "recommendation", "feedback", "updated_at"}

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

// UpsertWeekly 单条语句覆盖写入，并发处理同一学生同一周时不会产生重复记录
func (r *ReportRepository) UpsertWeekly(ctx context.Context, report *model.WeeklyReport) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "week"}},
		DoUpdates: clause.AssignmentColumns(reportColumns),
	}).Create(report).Error
}

func (r *ReportRepository) UpsertMonthly(ctx context.Context, report *model.MonthlyReport) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns(reportColumns),
	}).Create(report).Error
}

func (r *ReportRepository) ListWeekly(ctx context.Context) ([]model.WeeklyReport, error) {
	var reports []model.WeeklyReport
	err := r.DB.WithContext(ctx).Order("student_id, week").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListMonthly(ctx context.Context) ([]model.MonthlyReport, error) {
	var reports []model.MonthlyReport
	err := r.DB.WithContext(ctx).Order("student_id").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListWeeklyByStudent(ctx context.Context, studentID string) ([]model.WeeklyReport, error) {
	var reports []model.WeeklyReport
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("week").Find(&reports).Error
	return reports, err
}

// FindMonthly 不存在时返回 nil, nil
func (r *ReportRepository) FindMonthly(ctx context.Context, studentID string) (*model.MonthlyReport, error) {
	var report model.MonthlyReport
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
