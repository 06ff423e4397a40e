package model

import "time"

// Mark 每次提交都是新增记录，同一学生同一周同一科目可能有多条
type Mark struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID string    `gorm:"column:student_id;size:64;index:idx_marks_student_week" json:"studentId"`
	Week      int       `gorm:"column:week;index:idx_marks_student_week" json:"week"`
	Subject   string    `gorm:"column:subject;size:64" json:"subject"`
	Score     int       `gorm:"column:score" json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Mark) TableName() string {
	return "marks"
}
