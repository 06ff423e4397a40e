// Package evaluation turns a set of subject scores into an average, a performance
// category, a recommendation and per-subject feedback. It holds no state and does no I/O.
package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

type Category string

const (
	Outstanding  Category = "Outstanding"
	Strong       Category = "Strong"
	Average      Category = "Average"
	BelowAverage Category = "Below Average"
	Poor         Category = "Poor"
	AtRisk       Category = "At Risk"
)

const (
	// FailMark 低于该分数记为不及格科目
	FailMark = 40

	highRiskFailedSubjects = 2
	highRiskAverage        = 50.0
)

// HighRiskWarning 多科不及格且均分低于 50 时追加
const HighRiskWarning = " ⚠️ Student failed multiple subjects and is at a high risk of repeating the class."

type threshold struct {
	min            float64
	category       Category
	recommendation string
}

// 按降序匹配，第一个满足的生效
var thresholds = []threshold{
	{90, Outstanding, "This student consistently performs at a high level. Encourage participation in academic competitions or leadership roles."},
	{75, Strong, "Performance is solid. Keep challenging the student with more advanced material to maximize growth."},
	{60, Average, "Student is doing okay, but more attention is needed to avoid slipping. Recommend setting study goals and reviewing weak areas weekly."},
	{45, BelowAverage, "Performance is slipping. Recommend after-school tutoring and increased parental involvement."},
	{35, Poor, "Performance is poor. Recommend consistent monitoring by teachers and parents with focused support in weak subjects."},
	{math.Inf(-1), AtRisk, "Severe performance issues. Immediate academic intervention and counseling are required; review the teaching approach and check for personal issues affecting the student."},
}

type Result struct {
	Average        float64           `json:"average"`
	Category       Category          `json:"category"`
	Recommendation string            `json:"recommendation"`
	Feedback       map[string]string `json:"feedback"`
	FailedSubjects int               `json:"failedSubjects"`
	ValidSubjects  int               `json:"validSubjects"`
	// Dropped 无法解析为整数而被忽略的科目
	Dropped []string `json:"dropped,omitempty"`
}

// Evaluate 计算均分、等级、建议与各科反馈。
// 无法转换为整数的成绩直接忽略，不计入均分和不及格科目数。
func Evaluate(scores map[string]any) Result {
	var (
		sum     int
		valid   int
		failed  int
		dropped []string
	)
	feedback := make(map[string]string, len(scores))

	for subject, raw := range scores {
		score, ok := ParseScore(raw)
		if !ok {
			dropped = append(dropped, subject)
			continue
		}
		sum += score
		valid++
		if score < FailMark {
			failed++
		}
		feedback[subject] = Feedback(subject, score)
	}
	sort.Strings(dropped)

	avg := 0.0
	if valid > 0 {
		avg = Round2(float64(sum) / float64(valid))
	}

	category := Classify(avg)
	recommendation := Recommend(category)
	if failed >= highRiskFailedSubjects && avg < highRiskAverage {
		recommendation += HighRiskWarning
	}

	return Result{
		Average:        avg,
		Category:       category,
		Recommendation: recommendation,
		Feedback:       feedback,
		FailedSubjects: failed,
		ValidSubjects:  valid,
		Dropped:        dropped,
	}
}

// EvaluateList 兼容只传成绩列表的调用方，科目名按顺序生成
func EvaluateList(scores []int) Result {
	m := make(map[string]any, len(scores))
	for i, s := range scores {
		m[fmt.Sprintf("subject_%d", i+1)] = s
	}
	return Evaluate(m)
}

// EvaluateInts 调用方已持有整型成绩时使用
func EvaluateInts(scores map[string]int) Result {
	m := make(map[string]any, len(scores))
	for k, v := range scores {
		m[k] = v
	}
	return Evaluate(m)
}

func Classify(avg float64) Category {
	for _, t := range thresholds {
		if avg >= t.min {
			return t.category
		}
	}
	// NaN
	return AtRisk
}

func Recommend(c Category) string {
	for _, t := range thresholds {
		if t.category == c {
			return t.recommendation
		}
	}
	return ""
}

// Categories 按等级从高到低
func Categories() []Category {
	out := make([]Category, len(thresholds))
	for i, t := range thresholds {
		out[i] = t.category
	}
	return out
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseScore 将任意输入转换为整数成绩。
// 接受整数、浮点数（向零截断）、整数字符串和 json.Number；其余一律视为无效。
// 超出 int 范围的数值同样视为无效，不做回绕。
func ParseScore(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return 0, false
	case float32:
		return floatScore(float64(v))
	case float64:
		return floatScore(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int64Score(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatScore(f)
	}

	switch reflect.ValueOf(raw).Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := cast.ToUint64E(raw)
		if err != nil || u > math.MaxInt {
			return 0, false
		}
		return int(u), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := cast.ToInt64E(raw)
		if err != nil {
			return 0, false
		}
		return int64Score(i)
	}
	return 0, false
}

func floatScore(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt || t >= math.MaxInt {
		return 0, false
	}
	return int(t), true
}

func int64Score(i int64) (int, bool) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}
