package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"student_performance_backend/internal/model"
	"student_performance_backend/internal/util"
)

type StudentStore interface {
	Upsert(ctx context.Context, student *model.Student) error
	Exists(ctx context.Context, studentID string) (bool, error)
	List(ctx context.Context) ([]model.Student, error)
}

type MarkWriter interface {
	CreateBatch(ctx context.Context, marks []model.Mark) error
	ListHistory(ctx context.Context, studentID string) ([]model.Mark, error)
}

type StudentService struct {
	StudentRepo StudentStore
	MarkRepo    MarkWriter
}

func NewStudentService(studentRepo StudentStore, markRepo MarkWriter) *StudentService {
	return &StudentService{StudentRepo: studentRepo, MarkRepo: markRepo}
}

// UpsertStudent 登记学生，重复登记覆盖班级和科目组合
func (s *StudentService) UpsertStudent(ctx context.Context, studentID, class, combination string) (*model.Student, error) {
	student := &model.Student{
		StudentID:   strings.TrimSpace(studentID),
		Class:       strings.TrimSpace(class),
		Combination: strings.ToUpper(strings.TrimSpace(combination)),
	}
	if err := s.StudentRepo.Upsert(ctx, student); err != nil {
		return nil, fmt.Errorf("upsert student %s: %w", student.StudentID, err)
	}
	return student, nil
}

func (s *StudentService) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.StudentRepo.List(ctx)
}

// GenerateSampleStudents 生成 Student001 到 Student005 五个示例学生
func (s *StudentService) GenerateSampleStudents(ctx context.Context) ([]model.Student, error) {
	students := make([]model.Student, 0, 5)
	for i := 1; i <= 5; i++ {
		student, err := s.UpsertStudent(ctx,
			fmt.Sprintf("Student00%d", i),
			model.Classes[i%len(model.Classes)],
			model.CombinationCodes[i%len(model.CombinationCodes)],
		)
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
	}
	return students, nil
}

// SubmitMarks 每科新增一条成绩记录，不覆盖已有记录
func (s *StudentService) SubmitMarks(ctx context.Context, studentID string, week int, scores map[string]int) ([]model.Mark, error) {
	if week < 1 {
		return nil, util.ErrInvalidWeek
	}
	if len(scores) == 0 {
		return nil, util.ErrNoScores
	}

	ok, err := s.StudentRepo.Exists(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrStudentNotFound
	}

	normalized, err := normalizeSubjects(scores)
	if err != nil {
		return nil, err
	}

	subjects := make([]string, 0, len(normalized))
	for subject := range normalized {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	marks := make([]model.Mark, 0, len(normalized))
	for _, subject := range subjects {
		marks = append(marks, model.Mark{
			StudentID: studentID,
			Week:      week,
			Subject:   subject,
			Score:     normalized[subject],
		})
	}
	if err := s.MarkRepo.CreateBatch(ctx, marks); err != nil {
		return nil, fmt.Errorf("save marks for %s week %d: %w", studentID, week, err)
	}
	return marks, nil
}

// normalizeSubjects 去掉科目名首尾空白；空科目名或去空白后重名都视为无效
func normalizeSubjects(scores map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(scores))
	for subject, score := range scores {
		name := strings.TrimSpace(subject)
		if name == "" {
			return nil, util.ErrInvalidSubject
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: %q", util.ErrDuplicateSubject, name)
		}
		out[name] = score
	}
	return out, nil
}

// ListMarks 成绩历史，供前端绘制趋势
func (s *StudentService) ListMarks(ctx context.Context, studentID string) ([]model.Mark, error) {
	return s.MarkRepo.ListHistory(ctx, studentID)
}

type CombinationInfo struct {
	Code     string   `json:"code"`
	Subjects []string `json:"subjects"`
}

func (s *StudentService) ListCombinations() ([]CombinationInfo, []string) {
	out := make([]CombinationInfo, 0, len(model.CombinationCodes))
	for _, code := range model.CombinationCodes {
		out = append(out, CombinationInfo{Code: code, Subjects: model.Combinations[code]})
	}
	return out, model.Classes
}
