package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/handler/shared"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/httperror"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usecase/ideas"
)

const (
	// CredentialHeader 는 호출자가 자신의 OpenAI 키를 싣는 헤더다.
	CredentialHeader = "X-OpenAI-Key"
	maxTopicRunes    = 500
)

// IdeasRequest 는 아이디어 생성 요청이다.
type IdeasRequest struct {
	Topic  string `json:"topic" binding:"required"`
	APIKey string `json:"api_key"`
}

// IdeasResponse 는 두 계층의 아이디어 목록 응답이다.
type IdeasResponse struct {
	Primary        []ideasdomain.Idea `json:"primary"`
	Secondary      []ideasdomain.Idea `json:"secondary"`
	PrimaryModel   string             `json:"primary_model"`
	SecondaryModel string             `json:"secondary_model"`
}

// IdeasHandler 는 아이디어 생성 API 핸들러다.
type IdeasHandler struct {
	service *ideas.Service
	logger  *slog.Logger
}

// NewIdeasHandler 는 아이디어 핸들러를 생성한다.
func NewIdeasHandler(service *ideas.Service, logger *slog.Logger) *IdeasHandler {
	return &IdeasHandler{service: service, logger: logger}
}

// RegisterRoutes 는 아이디어 라우트를 등록한다.
func (h *IdeasHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/ideas", h.handleGenerate)
}

func (h *IdeasHandler) handleGenerate(c *gin.Context) {
	var req IdeasRequest
	if !shared.BindJSON(c, &req) {
		return
	}

	// 공백 검사만 다듬은 값으로 하고, 모델에는 입력 그대로 보낸다.
	if strings.TrimSpace(req.Topic) == "" {
		shared.WriteError(c, httperror.NewMissingField("topic"))
		return
	}
	if utf8.RuneCountInString(req.Topic) > maxTopicRunes {
		shared.WriteError(c, httperror.NewInvalidInput("topic must be at most 500 characters"))
		return
	}

	credential := shared.FirstNonEmpty(req.APIKey, c.GetHeader(CredentialHeader))
	result, err := h.service.Generate(c.Request.Context(), req.Topic, credential)
	if err != nil {
		shared.LogError(c.Request.Context(), h.logger, "ideas", err)
		shared.WriteError(c, err)
		return
	}

	primaryModel, secondaryModel := h.service.Models()
	c.JSON(http.StatusOK, IdeasResponse{
		Primary:        result.Primary,
		Secondary:      result.Secondary,
		PrimaryModel:   primaryModel,
		SecondaryModel: secondaryModel,
	})
}
