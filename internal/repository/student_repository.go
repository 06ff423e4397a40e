package repository

import (
	"context"
	"student_performance_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// Upsert 重复登记时以最后一次的班级和组合为准
func (r *StudentRepository) Upsert(ctx context.Context, student *model.Student) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"class", "combination", "updated_at"}),
	}).Create(student).Error
}

func (r *StudentRepository) Exists(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Student{}).Where("student_id = ?", studentID).Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.WithContext(ctx).Order("student_id").Find(&students).Error
	return students, err
}

func (r *StudentRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Student{}).Order("student_id").Pluck("student_id", &ids).Error
	return ids, err
}
