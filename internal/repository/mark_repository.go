package repository

import (
	"context"
	"student_performance_backend/internal/model"

	"gorm.io/gorm"
)

type MarkRepository struct {
	DB *gorm.DB
}

func NewMarkRepository(db *gorm.DB) *MarkRepository {
	return &MarkRepository{DB: db}
}

// CreateBatch 一次提交的各科成绩在同一事务中写入
func (r *MarkRepository) CreateBatch(ctx context.Context, marks []model.Mark) error {
	if len(marks) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&marks).Error
	})
}

// ListByStudent 按写入顺序返回，后写入的记录排在后面
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Mark, error) {
	var marks []model.Mark
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&marks).Error
	return marks, err
}

func (r *MarkRepository) ListByStudentWeek(ctx context.Context, studentID string, week int) ([]model.Mark, error) {
	var marks []model.Mark
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND week = ?", studentID, week).
		Order("id ASC").
		Find(&marks).Error
	return marks, err
}

// ListHistory 成绩趋势数据，按周次排序
func (r *MarkRepository) ListHistory(ctx context.Context, studentID string) ([]model.Mark, error) {
	var marks []model.Mark
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week ASC, id ASC").
		Find(&marks).Error
	return marks, err
}
