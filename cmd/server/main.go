package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/config"
	"github.com/park285/llm-kakao-bots/idea-llm-server-go/internal/di"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

// run 은 종료 코드를 반환한다. os.Exit 전에 App.Close 가 실행되도록 main 과 분리한다.
func run() int {
	app, err := di.InitializeApp()
	if err != nil {
		log.Printf("failed to initialize app: %v", err)
		return 1
	}
	defer app.Close()

	config.LogEnvStatus(app.Config, app.Logger)
	app.LogStartup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("http_server_shutdown_signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// 진행 중인 아이디어 생성은 기한 안에서 끝까지 기다린다.
		if shutdownErr := app.Server.Shutdown(shutdownCtx); shutdownErr != nil {
			app.Logger.Error("http_server_shutdown_failed", "err", shutdownErr)
			_ = app.Server.Close()
		}
		err = <-serverErr
	case err = <-serverErr:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.Logger.Error("http_server_failed", "err", err)
		return 1
	}
	app.Logger.Info("http_server_stopped")
	return 0
}
