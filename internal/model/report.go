package model

import (
	"time"

	"gorm.io/datatypes"
)

// WeeklyReport 周报，按 (student_id, week) 覆盖写入
type WeeklyReport struct {
	StudentID           string            `gorm:"column:student_id;primaryKey;size:64" json:"studentId"`
	Week                int               `gorm:"column:week;primaryKey;autoIncrement:false" json:"week"`
	AverageScore        float64           `gorm:"column:average_score" json:"averageScore"`
	PerformanceCategory string            `gorm:"column:performance_category;size:32" json:"performanceCategory"`
	Recommendation      string            `gorm:"column:recommendation;type:text" json:"recommendation"`
	Feedback            datatypes.JSONMap `gorm:"column:feedback" json:"feedback,omitempty"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (WeeklyReport) TableName() string {
	return "weekly_report"
}

// MonthlyReport 月报，按 student_id 覆盖写入
type MonthlyReport struct {
	StudentID           string            `gorm:"column:student_id;primaryKey;size:64" json:"studentId"`
	AverageScore        float64           `gorm:"column:average_score" json:"averageScore"`
	PerformanceCategory string            `gorm:"column:performance_category;size:32" json:"performanceCategory"`
	Recommendation      string            `gorm:"column:recommendation;type:text" json:"recommendation"`
	Feedback            datatypes.JSONMap `gorm:"column:feedback" json:"feedback,omitempty"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

func (MonthlyReport) TableName() string {
	return "monthly_report"
}

// StudentReports 单个学生的全部报表
type StudentReports struct {
	StudentID string         `json:"studentId"`
	Weekly    []WeeklyReport `json:"weekly"`
	Monthly   *MonthlyReport `json:"monthly"`
}

// FeedbackMap 转换为 JSON 列类型
func FeedbackMap(feedback map[string]string) datatypes.JSONMap {
	if len(feedback) == 0 {
		return nil
	}
	m := make(datatypes.JSONMap, len(feedback))
	for k, v := range feedback {
		m[k] = v
	}
	return m
}
