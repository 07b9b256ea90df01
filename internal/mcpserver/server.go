// Package mcpserver 는 아이디어 생성을 MCP 도구로 노출한다.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/handler/shared"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/httperror"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/usecase/ideas"
)

const (
	serverName       = "idea-llm-server"
	toolName         = "generate_ideas"
	credentialHeader = "X-OpenAI-Key"
)

type credentialKey struct{}

type generateArgs struct {
	Topic  string `json:"topic"`
	APIKey string `json:"api_key"`
}

type generateResult struct {
	Primary        []ideasdomain.Idea `json:"primary"`
	Secondary      []ideasdomain.Idea `json:"secondary"`
	PrimaryModel   string             `json:"primary_model"`
	SecondaryModel string             `json:"secondary_model"`
}

// Server 는 아이디어 생성 도구를 등록한 MCP 서버다.
type Server struct {
	service   *ideas.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// New 는 MCP 서버를 생성하고 도구를 등록한다.
func New(service *ideas.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service: service,
		logger:  logger,
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Generate five SEO friendly Turkish blog post ideas for a topic with two OpenAI models (gpt-4 first, then gpt-3.5-turbo)."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Blog topic, embedded verbatim into the prompt"),
		),
		mcp.WithString("api_key",
			mcp.Description("OpenAI API key; falls back to the X-OpenAI-Key header or the server key"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleGenerate)
	return s
}

// MCPServer 는 내부 mcp-go 서버를 반환한다.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// HTTPHandler 는 Streamable HTTP 전송 핸들러를 반환한다.
// 요청의 X-OpenAI-Key 헤더를 도구 호출 컨텍스트로 전달한다.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if key := strings.TrimSpace(r.Header.Get(credentialHeader)); key != "" {
				return context.WithValue(ctx, credentialKey{}, key)
			}
			return ctx
		}),
	)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args generateArgs
	if err := shared.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Topic) == "" {
		return mcp.NewToolResultError("topic parameter required"), nil
	}

	headerKey, _ := ctx.Value(credentialKey{}).(string)
	result, err := s.service.Generate(ctx, args.Topic, shared.FirstNonEmpty(args.APIKey, headerKey))
	if err != nil {
		shared.LogError(ctx, s.logger, "mcp_generate_ideas", err)
		return toolError(err), nil
	}

	primaryModel, secondaryModel := s.service.Models()
	payload, err := json.Marshal(generateResult{
		Primary:        result.Primary,
		Secondary:      result.Secondary,
		PrimaryModel:   primaryModel,
		SecondaryModel: secondaryModel,
	})
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// toolError 는 HTTP API 와 같은 오류 코드를 도구 오류 본문에 싣는다.
func toolError(err error) *mcp.CallToolResult {
	apiErr := httperror.FromError(err)
	text := fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Message)
	if details, detailErr := shared.SerializeDetails(apiErr.Details); detailErr == nil && details != "" {
		text += " " + details
	}
	return mcp.NewToolResultError(text)
}
