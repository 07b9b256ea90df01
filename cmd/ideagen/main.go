package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	ideasdomain "github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/domain/ideas"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/di"
)

func main() {
	topic := flag.String("topic", "", "blog topic")
	apiKey := flag.String("api-key", "", "OpenAI API key (or OPENAI_API_KEY env)")
	flag.Parse()

	if *topic == "" && flag.NArg() > 0 {
		*topic = flag.Arg(0)
	}
	if *topic == "" {
		fmt.Fprintln(os.Stderr, "Usage: ideagen -topic <topic> [-api-key <key>]")
		os.Exit(2)
	}

	service, err := di.InitializeService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := service.Generate(ctx, *topic, *apiKey)
	if err != nil {
		var genErr *ideasdomain.GenerationError
		if errors.As(err, &genErr) {
			fmt.Fprintf(os.Stderr, "%s (%s): %s\n", genErr.Kind, genErr.Tier, genErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		}
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
}
