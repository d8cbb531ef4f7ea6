package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/app"
	"github.com/chanddari/subbot/internal/config"
	"github.com/chanddari/subbot/internal/domain/repository"
	"github.com/chanddari/subbot/internal/storage/postgres"
	"github.com/chanddari/subbot/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		TelegramToken:   "stub-token",
		TelegramAPIBase: "https://api.telegram.org",
		SweepInterval:   time.Millisecond,
		SessionTTL:      time.Minute,
		ContentCacheTTL: time.Minute,
		EventTimeout:    time.Second,
		ShutdownTimeout: time.Millisecond,
		SendRate:        25,
		SendBurst:       5,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var facade *app.BotFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(&test.OrderRepositoryStub{})),
			fx.Replace(repository.PlanRepository(&test.PlanRepositoryStub{})),
			fx.Replace(repository.ContentRepository(&test.ContentRepositoryStub{})),
			fx.Replace(repository.SequenceRepository(&test.SequenceRepositoryStub{})),
			fx.Replace(telegram.Client(&test.GatewayStub{})),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected bot facade instance")
	}
}
