package cache

import (
	"context"
	"encoding/json"
	"student_performance_backend/internal/model"
	"student_performance_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const reportKeyPrefix = "reports:student:"

// ReportCache 学生报表的 Redis 缓存，生成新报表时失效
type ReportCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{Redis: rdb, TTL: ttl}
}

func key(studentID string) string {
	return reportKeyPrefix + studentID
}

// Get 未命中或出错都返回 false，缓存故障不影响读取
func (c *ReportCache) Get(ctx context.Context, studentID string) (*model.StudentReports, bool) {
	val, err := c.Redis.Get(ctx, key(studentID)).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Log.Warn("report cache get failed", zap.String("studentId", studentID), zap.Error(err))
		return nil, false
	}

	var reports model.StudentReports
	if err := json.Unmarshal([]byte(val), &reports); err != nil {
		logger.Log.Warn("report cache decode failed", zap.String("studentId", studentID), zap.Error(err))
		return nil, false
	}
	return &reports, true
}

func (c *ReportCache) Set(ctx context.Context, reports *model.StudentReports) {
	data, err := json.Marshal(reports)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key(reports.StudentID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("report cache set failed", zap.String("studentId", reports.StudentID), zap.Error(err))
	}
}

func (c *ReportCache) Invalidate(ctx context.Context, studentID string) {
	if err := c.Redis.Del(ctx, key(studentID)).Err(); err != nil {
		logger.Log.Warn("report cache invalidate failed", zap.String("studentId", studentID), zap.Error(err))
	}
}
