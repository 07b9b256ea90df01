package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/guard"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/handler/shared"
)

// GuardRequest 는 가드 검사 요청이다.
type GuardRequest struct {
	InputText string `json:"input_text" binding:"required"`
}

// GuardResponse 는 가드 평가 응답이다.
type GuardResponse struct {
	Score     float64       `json:"score"`
	Malicious bool          `json:"malicious"`
	Threshold float64       `json:"threshold"`
	Hits      []guard.Match `json:"hits"`
}

// GuardHandler 는 주제 사전 검사 API 핸들러다.
type GuardHandler struct {
	guard guard.Guard
}

// NewGuardHandler 는 가드 핸들러를 생성한다.
func NewGuardHandler(g guard.Guard) *GuardHandler {
	return &GuardHandler{guard: g}
}

// RegisterRoutes 는 가드 라우트를 등록한다.
func (h *GuardHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/guard/evaluations", h.handleEvaluate)
}

func (h *GuardHandler) handleEvaluate(c *gin.Context) {
	var req GuardRequest
	if !shared.BindJSON(c, &req) {
		return
	}

	evaluation := h.guard.Evaluate(req.InputText)
	hits := evaluation.Hits
	if hits == nil {
		hits = []guard.Match{}
	}
	// 가드가 꺼져 있으면 임계값이 +Inf 라서 JSON 으로 표현할 수 없다.
	threshold := evaluation.Threshold
	if math.IsInf(threshold, 0) {
		threshold = 0
	}
	c.JSON(http.StatusOK, GuardResponse{
		Score:     evaluation.Score,
		Malicious: evaluation.Malicious(),
		Threshold: threshold,
		Hits:      hits,
	})
}
