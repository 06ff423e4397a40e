package cache

import (
	"context"
	"testing"
	"time"

	"student_performance_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

// 连不上 Redis 时缓存应当静默降级
func TestReportCache_UnavailableRedisIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewReportCache(rdb, time.Minute)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.Set(ctx, &model.StudentReports{StudentID: "Student001"})
		c.Invalidate(ctx, "Student001")
	})

	got, ok := c.Get(ctx, "Student001")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestReportCache_Key(t *testing.T) {
	assert.Equal(t, "reports:student:Student001", key("Student001"))
}
