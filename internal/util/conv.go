package util

import (
	"strconv"
)

// ParseWeek 解析周次，必须为正整数
func ParseWeek(s string) (int, error) {
	week, err := strconv.Atoi(s)
	if err != nil || week < 1 {
		return 0, ErrInvalidWeek
	}
	return week, nil
}
