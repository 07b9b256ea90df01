package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/handler/shared"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/httperror"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usage"
)

const maxUsageDays = 365

// DailyUsageResponse: 일자별 사용량 응답입니다.
type DailyUsageResponse struct {
	UsageDate    string             `json:"usage_date"`
	InputTokens  int64              `json:"input_tokens"`
	OutputTokens int64              `json:"output_tokens"`
	TotalTokens  int64              `json:"total_tokens"`
	RequestCount int64              `json:"request_count"`
	Models       []usage.ModelUsage `json:"models,omitempty"`
}

// UsageListResponse: 사용량 목록 응답입니다.
type UsageListResponse struct {
	Usages            []DailyUsageResponse `json:"usages"`
	TotalInputTokens  int64                `json:"total_input_tokens"`
	TotalOutputTokens int64                `json:"total_output_tokens"`
	TotalTokens       int64                `json:"total_tokens"`
	TotalRequestCount int64                `json:"total_request_count"`
}

// UsageHandler: 사용량 API 핸들러입니다.
type UsageHandler struct {
	store  usage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewUsageHandler: 사용량 핸들러를 생성합니다. store 가 nil 이면 모든 조회가 503 입니다.
func NewUsageHandler(store usage.Store, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterRoutes: 사용량 라우트를 등록합니다.
func (h *UsageHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/usage")
	group.GET("/daily", h.handleDaily)
	group.GET("/recent", h.handleRecent)
	group.GET("/total", h.handleTotal)
}

func (h *UsageHandler) handleDaily(c *gin.Context) {
	if !h.available(c) {
		return
	}

	usageRow, err := h.store.GetDailyUsage(c.Request.Context(), time.Time{})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, h.buildDailyResponse(usageRow))
}

func (h *UsageHandler) handleRecent(c *gin.Context) {
	if !h.available(c) {
		return
	}
	days, ok := parseDays(c, 7)
	if !ok {
		return
	}

	usages, err := h.store.GetRecentUsage(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, buildUsageListResponse(usages))
}

func (h *UsageHandler) handleTotal(c *gin.Context) {
	if !h.available(c) {
		return
	}
	days, ok := parseDays(c, 30)
	if !ok {
		return
	}

	total, err := h.store.GetTotalUsage(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toDailyResponse(total))
}

func (h *UsageHandler) available(c *gin.Context) bool {
	if h.store != nil {
		return true
	}
	shared.WriteError(c, httperror.NewUnavailable("usage accounting is disabled"))
	return false
}

func (h *UsageHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, usage.ErrDisabled) {
		shared.WriteError(c, httperror.NewUnavailable("usage accounting is disabled"))
		return
	}
	shared.LogError(c.Request.Context(), h.logger, "usage", err)
	shared.WriteError(c, err)
}

func (h *UsageHandler) buildDailyResponse(usageRow *usage.DailyUsage) DailyUsageResponse {
	if usageRow == nil {
		return DailyUsageResponse{
			UsageDate: h.now().Format("2006-01-02"),
			Models:    []usage.ModelUsage{},
		}
	}
	return toDailyResponse(*usageRow)
}

func toDailyResponse(row usage.DailyUsage) DailyUsageResponse {
	return DailyUsageResponse{
		UsageDate:    row.UsageDay,
		InputTokens:  row.InputTokens,
		OutputTokens: row.OutputTokens,
		TotalTokens:  row.TotalTokens(),
		RequestCount: row.RequestCount,
		Models:       row.Models,
	}
}

func buildUsageListResponse(usages []usage.DailyUsage) UsageListResponse {
	response := UsageListResponse{
		Usages: make([]DailyUsageResponse, 0, len(usages)),
	}

	for _, row := range usages {
		response.Usages = append(response.Usages, toDailyResponse(row))
		response.TotalInputTokens += row.InputTokens
		response.TotalOutputTokens += row.OutputTokens
		response.TotalTokens += row.TotalTokens()
		response.TotalRequestCount += row.RequestCount
	}

	return response
}

func parseDays(c *gin.Context, defaultDays int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 || parsed > maxUsageDays {
		shared.WriteError(c, httperror.NewInvalidInput("days must be between 1 and 365"))
		return 0, false
	}
	return parsed, true
}
