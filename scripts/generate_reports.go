// 手动触发报表批量生成脚本
//
// 用于补生成历史周报或手动生成月报。服务运行时也可执行：
// 启用 Redis 时脚本会同样清除受影响学生的报表缓存。
//
// 用法:
//
//	go run scripts/generate_reports.go -period weekly -week 3
//	go run scripts/generate_reports.go -period monthly -students Student001,Student002

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"student_performance_backend/internal/config"
	"student_performance_backend/internal/repository"
	"student_performance_backend/internal/service"
	"student_performance_backend/pkg/cache"
	"student_performance_backend/pkg/database"
	"student_performance_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

// scriptConfig 只读取脚本需要的配置段
type scriptConfig struct {
	Server struct {
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Database struct {
		Driver     string `yaml:"driver"`
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		DBName     string `yaml:"dbname"`
		Charset    string `yaml:"charset"`
		ParseTime  bool   `yaml:"parsetime"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Enabled    bool   `yaml:"enabled"`
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"redis"`
	Report struct {
		MonthlyPolicy string `yaml:"monthly_policy"`
	} `yaml:"report"`
}

func parseConfig(data []byte) (*config.Config, error) {
	var sc scriptConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: sc.Server.Mode},
		Database: config.DatabaseConfig{
			Driver:     sc.Database.Driver,
			Host:       sc.Database.Host,
			Port:       sc.Database.Port,
			User:       sc.Database.User,
			Password:   sc.Database.Password,
			DBName:     sc.Database.DBName,
			Charset:    sc.Database.Charset,
			ParseTime:  sc.Database.ParseTime,
			SQLitePath: sc.Database.SQLitePath,
		},
		Redis: config.RedisConfig{
			Enabled:    sc.Redis.Enabled,
			Host:       sc.Redis.Host,
			Port:       sc.Redis.Port,
			Password:   sc.Redis.Password,
			DB:         sc.Redis.DB,
			TTLMinutes: sc.Redis.TTLMinutes,
		},
		Report: config.ReportConfig{MonthlyPolicy: sc.Report.MonthlyPolicy},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newReportCache 启用 Redis 时必须连上，否则服务端会继续返回旧报表
func newReportCache(cfg *config.Config) (service.ReportCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	return cache.NewReportCache(rdb, cfg.RedisTTL()), nil
}

func main() {
	configFile := flag.String("config", "configs/config.yaml", "配置文件路径")
	period := flag.String("period", "weekly", "weekly 或 monthly")
	week := flag.Int("week", 0, "周次（weekly 时必填）")
	students := flag.String("students", "", "逗号分隔的学号，留空处理全部学生")
	flag.Parse()

	data, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	studentRepo := repository.NewStudentRepository(db)
	markRepo := repository.NewMarkRepository(db)
	reportCache, err := newReportCache(cfg)
	if err != nil {
		log.Fatalf("Redis 连接失败，无法清除报表缓存: %v", err)
	}

	reportService := service.NewReportService(markRepo, repository.NewReportRepository(db), studentRepo, reportCache, cfg)

	var ids []string
	for _, id := range strings.Split(*students, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	var weekArg *int
	switch *period {
	case "weekly":
		if *week < 1 {
			log.Fatal("weekly 需要 -week 参数且大于 0")
		}
		weekArg = week
	case "monthly":
	default:
		log.Fatalf("未知的 period: %s", *period)
	}

	log.Printf("开始生成 %s 报表...", *period)
	outcomes, err := reportService.GenerateAllReports(context.Background(), ids, weekArg)
	if err != nil {
		log.Fatalf("批量生成失败: %v", err)
	}

	counts := map[string]int{}
	for _, o := range outcomes {
		counts[o.Status]++
		if o.Error != "" {
			log.Printf("%s: %s", o.StudentID, o.Error)
		}
	}
	log.Printf("完成！generated=%d skipped=%d failed=%d",
		counts[service.StatusGenerated], counts[service.StatusSkipped], counts[service.StatusFailed])
}
