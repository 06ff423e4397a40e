package evaluation

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Examples(t *testing.T) {
	tests := []struct {
		name        string
		scores      map[string]any
		wantAvg     float64
		wantCat     Category
		wantFailed  int
		wantWarning bool
	}{
		{
			name:    "outstanding",
			scores:  map[string]any{"Math": 95, "Physics": 92, "Geography": 98},
			wantAvg: 95.0,
			wantCat: Outstanding,
		},
		{
			name:        "at risk with warning",
			scores:      map[string]any{"Math": 30, "Physics": 20, "Geography": 45},
			wantAvg:     31.67,
			wantCat:     AtRisk,
			wantFailed:  2,
			wantWarning: true,
		},
		{
			name:    "single subject average",
			scores:  map[string]any{"Math": 70},
			wantAvg: 70.0,
			wantCat: Average,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.scores)
			assert.Equal(t, tt.wantAvg, res.Average)
			assert.Equal(t, tt.wantCat, res.Category)
			assert.Equal(t, tt.wantFailed, res.FailedSubjects)
			assert.Equal(t, tt.wantWarning, strings.HasSuffix(res.Recommendation, HighRiskWarning))
			assert.True(t, strings.HasPrefix(res.Recommendation, Recommend(tt.wantCat)))
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		avg  float64
		want Category
	}{
		{100, Outstanding},
		{90, Outstanding},
		{89.99, Strong},
		{75, Strong},
		{74.99, Average},
		{60, Average},
		{59.99, BelowAverage},
		{45, BelowAverage},
		{44.99, Poor},
		{35, Poor},
		{34.99, AtRisk},
		{0, AtRisk},
		{-5, AtRisk},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.avg), "avg=%v", tt.avg)
	}
}

func TestClassify_ExactlyOneCategoryPerAverage(t *testing.T) {
	for avg := -10.0; avg <= 110; avg += 0.01 {
		matches := 0
		for i, th := range thresholds {
			upper := math.Inf(1)
			if i > 0 {
				upper = thresholds[i-1].min
			}
			if avg >= th.min && avg < upper {
				matches++
				assert.Equal(t, th.category, Classify(avg))
			}
		}
		require.Equal(t, 1, matches, "avg=%v", avg)
	}
}

func TestEvaluate_WarningOnlyWhenFailedAndLowAverage(t *testing.T) {
	// 两科不及格但均分 >= 50
	res := Evaluate(map[string]any{"a": 30, "b": 35, "c": 90, "d": 95})
	assert.Equal(t, 2, res.FailedSubjects)
	assert.Equal(t, 62.5, res.Average)
	assert.NotContains(t, res.Recommendation, HighRiskWarning)

	// 均分 < 50 但只有一科不及格
	res = Evaluate(map[string]any{"a": 20, "b": 45, "c": 48})
	assert.Equal(t, 1, res.FailedSubjects)
	assert.Less(t, res.Average, 50.0)
	assert.NotContains(t, res.Recommendation, HighRiskWarning)

	// 两个条件都满足
	res = Evaluate(map[string]any{"a": 39, "b": 39, "c": 60})
	assert.Equal(t, 46.0, res.Average)
	assert.Equal(t, BelowAverage, res.Category)
	assert.True(t, strings.HasSuffix(res.Recommendation, HighRiskWarning))
}

func TestEvaluate_DropsMalformedScores(t *testing.T) {
	clean := Evaluate(map[string]any{"Math": 80, "Physics": 60})
	dirty := Evaluate(map[string]any{
		"Math":      80,
		"Physics":   60,
		"Chemistry": "absent",
		"Biology":   nil,
		"History":   true,
		"Art":       []int{1},
		"Music":     math.NaN(),
		"Drama":     "72.5",
		"Latin":     1e300,
		"Greek":     -1e300,
		"Hebrew":    uint64(1 << 63),
		"Welsh":     json.Number("1e30"),
		"Irish":     float32(math.Inf(1)),
	})

	assert.Equal(t, clean.Average, dirty.Average)
	assert.Equal(t, clean.Category, dirty.Category)
	assert.Equal(t, clean.FailedSubjects, dirty.FailedSubjects)
	assert.Equal(t, 2, dirty.ValidSubjects)
	assert.Equal(t, []string{"Art", "Biology", "Chemistry", "Drama", "Greek", "Hebrew", "History", "Irish", "Latin", "Music", "Welsh"}, dirty.Dropped)
	assert.Len(t, dirty.Feedback, 2)
}

func TestEvaluate_AcceptsNumericForms(t *testing.T) {
	res := Evaluate(map[string]any{
		"a": "80",
		"b": " 60 ",
		"c": json.Number("70"),
		"d": 90.0,
		"e": int64(100),
		"f": uint8(50),
	})
	assert.Equal(t, 6, res.ValidSubjects)
	assert.Equal(t, 75.0, res.Average)
	assert.Empty(t, res.Dropped)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   int
		wantOK bool
	}{
		{"leading zero string", "08", 8, true},
		{"exponent string", "1e2", 0, false},
		{"float truncates", 79.9, 79, true},
		{"negative float truncates", -0.5, 0, true},
		{"huge float", 1e300, 0, false},
		{"float at int boundary", math.Pow(2, 63), 0, false},
		{"huge uint64", uint64(1 << 63), 0, false},
		{"max uint8", uint8(255), 255, true},
		{"json float", json.Number("88.4"), 88, true},
		{"huge json number", json.Number("1e30"), 0, false},
		{"complex", complex(1, 0), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseScore(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_HugeNumberIsDropped(t *testing.T) {
	res := Evaluate(map[string]any{"Math": 1e300, "Physics": 50})
	assert.Equal(t, 50.0, res.Average)
	assert.Equal(t, 1, res.ValidSubjects)
	assert.Equal(t, []string{"Math"}, res.Dropped)
}

func TestEvaluate_EmptyInput(t *testing.T) {
	for _, in := range []map[string]any{nil, {}, {"x": "n/a"}} {
		res := Evaluate(in)
		assert.Equal(t, 0.0, res.Average)
		assert.Equal(t, AtRisk, res.Category)
		assert.Equal(t, 0, res.ValidSubjects)
		assert.Equal(t, 0, res.FailedSubjects)
		assert.NotContains(t, res.Recommendation, HighRiskWarning)
	}
}

func TestEvaluate_AverageIsRoundedMean(t *testing.T) {
	res := Evaluate(map[string]any{"a": 100, "b": 100, "c": 99})
	assert.Equal(t, 99.67, res.Average)

	res = Evaluate(map[string]any{"a": 0, "b": 0, "c": 1})
	assert.Equal(t, 0.33, res.Average)
	assert.GreaterOrEqual(t, res.Average, 0.0)
}

func TestEvaluateList_SynthesizesSubjects(t *testing.T) {
	res := EvaluateList([]int{95, 92, 98})
	assert.Equal(t, 95.0, res.Average)
	assert.Equal(t, Outstanding, res.Category)
	assert.Contains(t, res.Feedback, "subject_1")
	assert.Contains(t, res.Feedback, "subject_3")
}

func TestFeedback_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{100, BandExceptional},
		{85, BandExceptional},
		{84, BandExcellent},
		{75, BandExcellent},
		{65, BandGood},
		{55, BandFair},
		{54, BandWeak},
		{50, BandWeak},
		{45, BandWeak},
		{35, BandPoor},
		{34, BandCritical},
		{0, BandCritical},
	}
	for _, tt := range tests {
		got, msg := BandFor(tt.score)
		assert.Equal(t, tt.want, got, "score=%d", tt.score)
		assert.True(t, strings.HasPrefix(msg, string(tt.want)+" performance."), msg)
	}
}

func TestFeedback_Format(t *testing.T) {
	line := Feedback("Physics", 50)
	assert.True(t, strings.HasPrefix(line, "Physics: 50 – "))
	assert.Contains(t, line, "Weak performance.")

	res := Evaluate(map[string]any{"Physics": 50, "Math": 95})
	assert.Equal(t, line, res.Feedback["Physics"])
	// 单科反馈不受其他科目影响
	assert.Equal(t, Evaluate(map[string]any{"Physics": 50}).Feedback["Physics"], res.Feedback["Physics"])
}
