package model

import "time"

// swagger:model Student
type Student struct {
	StudentID   string    `gorm:"column:student_id;primaryKey;size:64" json:"studentId"`
	Class       string    `gorm:"column:class;size:20" json:"class"`
	Combination string    `gorm:"column:combination;size:20" json:"combination"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Student) TableName() string {
	return "students"
}

// 示例数据使用的班级和科目组合
var (
	Classes = []string{"S4", "S5", "S6"}

	CombinationCodes = []string{"MPG", "PCM", "PCB"}

	Combinations = map[string][]string{
		"MPG": {"Math", "Physics", "Geography"},
		"PCM": {"Physics", "Chemistry", "Math"},
		"PCB": {"Physics", "Chemistry", "Biology"},
	}
)
