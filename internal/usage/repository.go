package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
)

// ErrDisabled 는 사용량 집계가 꺼져 있을 때의 오류다.
var ErrDisabled = errors.New("usage accounting disabled")

// Repository 는 usage DB 접근을 담당한다. 연결은 첫 사용 시점에 연다.
type Repository struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewRepository 는 usage 저장소를 생성한다.
func NewRepository(cfg *config.Config, logger *slog.Logger) *Repository {
	return &Repository{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// NewRepositoryWithDB 는 이미 열린 gorm 연결로 저장소를 만들고 스키마를 준비한다.
func NewRepositoryWithDB(ctx context.Context, db *gorm.DB, logger *slog.Logger) (*Repository, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureUsageSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("prepare usage db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get usage db handle: %w", err)
	}
	return &Repository{
		logger: logger,
		now:    time.Now,
		db:     db,
		sqlDB:  sqlDB,
	}, nil
}

// Enabled 는 설정상 사용량 집계가 켜져 있는지 반환한다.
func (r *Repository) Enabled() bool {
	if r == nil {
		return false
	}
	if r.db != nil {
		return true
	}
	return r.cfg != nil && r.cfg.Database.UsageEnabled
}

// RecordUsage 는 지정한 날짜(또는 오늘)·모델의 토큰 사용량을 누적 저장한다.
func (r *Repository) RecordUsage(
	ctx context.Context,
	model string,
	inputTokens int64,
	outputTokens int64,
	requestCount int64,
	usageDate time.Time,
) error {
	if requestCount <= 0 && inputTokens <= 0 && outputTokens <= 0 {
		return nil
	}

	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}

	row := TokenUsage{
		UsageDay:     r.dayOrToday(usageDate),
		Model:        strings.TrimSpace(model),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		RequestCount: requestCount,
	}

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "usage_day"}, {Name: "model"}},
		DoUpdates: clause.Assignments(map[string]any{
			"input_tokens":  gorm.Expr("token_usage.input_tokens + excluded.input_tokens"),
			"output_tokens": gorm.Expr("token_usage.output_tokens + excluded.output_tokens"),
			"request_count": gorm.Expr("token_usage.request_count + excluded.request_count"),
			"version":       gorm.Expr("token_usage.version + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert token usage: %w", err)
	}
	return nil
}

// GetDailyUsage 는 특정 날짜(또는 오늘)의 사용량을 모델별 내역과 함께 조회한다.
// 기록이 없으면 nil 을 반환한다.
func (r *Repository) GetDailyUsage(ctx context.Context, usageDate time.Time) (*DailyUsage, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	day := r.dayOrToday(usageDate)
	var rows []TokenUsage
	if err := db.WithContext(ctx).Where("usage_day = ?", day).Order("model").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query daily usage: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	result := &DailyUsage{UsageDay: day, Models: make([]ModelUsage, 0, len(rows))}
	for _, row := range rows {
		result.InputTokens += row.InputTokens
		result.OutputTokens += row.OutputTokens
		result.RequestCount += row.RequestCount
		result.Models = append(result.Models, ModelUsage{
			Model:        row.Model,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			RequestCount: row.RequestCount,
		})
	}
	return result, nil
}

// GetRecentUsage 는 기록이 있는 최근 N일의 일자별 합계를 최신순으로 조회한다.
func (r *Repository) GetRecentUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	type dayAggregate struct {
		UsageDay     string
		InputTokens  int64
		OutputTokens int64
		RequestCount int64
	}

	var rows []dayAggregate
	err = db.WithContext(ctx).Model(&TokenUsage{}).
		Select("usage_day, COALESCE(SUM(input_tokens), 0) AS input_tokens, COALESCE(SUM(output_tokens), 0) AS output_tokens, COALESCE(SUM(request_count), 0) AS request_count").
		Group("usage_day").
		Order("usage_day desc").
		Limit(days).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query recent usage: %w", err)
	}

	usages := make([]DailyUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, DailyUsage{
			UsageDay:     row.UsageDay,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			RequestCount: row.RequestCount,
		})
	}
	return usages, nil
}

// GetTotalUsage 는 오늘을 포함한 최근 N일 합계를 모델별 내역과 함께 조회한다.
func (r *Repository) GetTotalUsage(ctx context.Context, days int) (DailyUsage, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return DailyUsage{}, err
	}
	if days <= 0 {
		days = 30
	}

	today := r.today()
	since := dayOf(today.AddDate(0, 0, -(days - 1)))

	var models []ModelUsage
	err = db.WithContext(ctx).Model(&TokenUsage{}).
		Select("model, COALESCE(SUM(input_tokens), 0) AS input_tokens, COALESCE(SUM(output_tokens), 0) AS output_tokens, COALESCE(SUM(request_count), 0) AS request_count").
		Where("usage_day >= ?", since).
		Group("model").
		Order("model").
		Scan(&models).Error
	if err != nil {
		return DailyUsage{}, fmt.Errorf("query total usage: %w", err)
	}

	total := DailyUsage{UsageDay: dayOf(today), Models: models}
	for _, model := range models {
		total.InputTokens += model.InputTokens
		total.OutputTokens += model.OutputTokens
		total.RequestCount += model.RequestCount
	}
	return total, nil
}

// Ping 은 DB 연결 상태를 확인한다.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.getDB(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	sqlDB := r.sqlDB
	r.mu.Unlock()
	if sqlDB == nil {
		return errors.New("usage db closed")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping usage db: %w", err)
	}
	return nil
}

// Close 는 DB 연결을 닫는다.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sqlDB == nil {
		return
	}
	_ = r.sqlDB.Close()
	r.sqlDB = nil
	r.db = nil
}

func (r *Repository) getDB(ctx context.Context) (*gorm.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}
	if r.cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if !r.cfg.Database.UsageEnabled {
		return nil, ErrDisabled
	}

	hostUsed := r.cfg.Database.Host
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	db, err := gorm.Open(postgres.Open(r.cfg.Database.DSN()), gormCfg)
	if err != nil && shouldFallbackToLocalhost(err, r.cfg.Database.Host) {
		fallback := r.cfg.Database
		fallback.Host = "127.0.0.1"
		db, err = gorm.Open(postgres.Open(fallback.DSN()), gormCfg)
		if err == nil {
			hostUsed = fallback.Host
			if r.logger != nil {
				r.logger.Warn("usage_db_host_fallback", "configured_host", r.cfg.Database.Host, "effective_host", hostUsed)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if schemaErr := ensureUsageSchema(ctx, db); schemaErr != nil {
		return nil, fmt.Errorf("prepare usage db: %w", schemaErr)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get usage db handle: %w", err)
	}

	sqlDB.SetMaxIdleConns(r.cfg.Database.MinPool)
	sqlDB.SetMaxOpenConns(r.cfg.Database.MaxPool)
	if r.cfg.Database.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(r.cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	}
	if r.cfg.Database.ConnMaxIdleTimeMinutes > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(r.cfg.Database.ConnMaxIdleTimeMinutes) * time.Minute)
	}

	if r.logger != nil {
		r.logger.Info("usage_db_connected", "host", hostUsed, "name", r.cfg.Database.Name)
	}

	r.db = db
	r.sqlDB = sqlDB
	return db, nil
}

func ensureUsageSchema(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if err := db.WithContext(ctx).AutoMigrate(&TokenUsage{}); err != nil {
		return fmt.Errorf("migrate token_usage: %w", err)
	}
	return nil
}

func (r *Repository) today() time.Time {
	now := r.now().In(time.Local)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (r *Repository) dayOrToday(usageDate time.Time) string {
	if usageDate.IsZero() {
		return dayOf(r.today())
	}
	return dayOf(usageDate)
}

func shouldFallbackToLocalhost(err error, host string) bool {
	if err == nil {
		return false
	}
	if !strings.EqualFold(host, "postgres") {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return strings.EqualFold(dnsErr.Name, host)
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "no such host") && strings.Contains(lower, strings.ToLower(host))
}
