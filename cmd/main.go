package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Artexxx/HR-People-Analytics/internal/analytics"
	"github.com/Artexxx/HR-People-Analytics/internal/api"
	"github.com/Artexxx/HR-People-Analytics/internal/app"
	"github.com/Artexxx/HR-People-Analytics/internal/config"
	"github.com/Artexxx/HR-People-Analytics/internal/exchange/consumer"
	"github.com/Artexxx/HR-People-Analytics/internal/exchange/producer"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
	"github.com/Artexxx/HR-People-Analytics/internal/metrics"
	"github.com/Artexxx/HR-People-Analytics/internal/repository/events"
	"github.com/Artexxx/HR-People-Analytics/library/yamlreader"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	cfg := MustNewConfig(parseFlags())
	app.SetupLogging(cfg.Log.Level.Value)

	log.Info().
		Str("storage", cfg.Storage.Driver.Value).
		Str("blob", cfg.Upload.Blob.Driver.Value).
		Bool("kafka", cfg.Kafka.Enabled.Value).
		Msg("configuration loaded")

	storage, err := app.OpenStorage(ctx, cfg.Storage, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer storage.Close()

	archive, err := app.OpenArchive(ctx, cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("upload archive init failed")
	}

	deps := api.ServiceDeps{
		Port:           cfg.UserAPI.Port.Value,
		MaxUploadBytes: cfg.Upload.MaxBytes.Value,
		PeopleRepo:     storage.People,
		Importer:       ingest.NewImporter(storage.People, archive, cfg.Upload.MaxBytes.Value),
		Engine: analytics.NewEngine(analytics.Config{
			ReferenceGender: cfg.Analytics.ReferenceGender.Value,
			ComparedGender:  cfg.Analytics.ComparedGender.Value,
		}),
		Archive: archive,
		Metrics: metrics.New(),
	}

	group, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled.Value {
		peopleProducer, intake, err := initKafka(ctx, cfg, storage)
		if err != nil {
			log.Fatal().Err(err).Msg("kafka init failed")
		}
		defer func() { _ = peopleProducer.Close() }()

		deps.Producer = peopleProducer
		deps.EventsRepo = intake.events

		group.Go(func() error {
			log.Info().Msg("запуск consumer_intake")
			if err := intake.runner.Start(gctx); err != nil {
				log.Error().Err(err).Msg("consumer_intake завершился с ошибкой")

				return err
			}

			log.Info().Msg("consumer_intake остановлен")

			return nil
		})
	}

	apiService := api.NewService(deps)

	group.Go(func() error {
		log.Info().Msg("запуск HTTP API")
		if err := apiService.Start(gctx); err != nil {
			log.Error().Err(err).Msg("HTTP API завершился с ошибкой")

			return err
		}

		log.Info().Msg("HTTP API остановлен")

		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = group.Wait()
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("signal received, graceful shutdown...")
		<-done
		log.Info().Msg("all services stopped")
	case <-done:
		log.Info().Msg("all services stopped")
	}
}

type intakeDeps struct {
	events *events.Repository
	runner *consumer.Runner
}

func initKafka(ctx context.Context, cfg *config.Config, storage *app.Storage) (*producer.PeopleProducer, intakeDeps, error) {
	sp, err := producer.NewSyncProducer(cfg.Kafka.Bootstrap.Value, cfg.Kafka.ProducerClientID.Value)
	if err != nil {
		return nil, intakeDeps{}, err
	}

	peopleProducer := producer.NewPeopleProducer(
		sp,
		producer.Config{
			Topic:  cfg.Kafka.Topics.Events.Value,
			Source: cfg.Kafka.ProducerClientID.Value,
		},
		log.Logger,
	)

	eventsRepo := events.NewRepository(storage.Pool)
	if err := eventsRepo.EnsureSchema(ctx); err != nil {
		_ = peopleProducer.Close()
		return nil, intakeDeps{}, err
	}

	runner := consumer.NewIntakeRunner(
		cfg.Kafka.Bootstrap.Value,
		cfg.Kafka.Topics.Intake.Value,
		cfg.Kafka.GroupID.Value,
		eventsRepo,
		log.Logger,
	)

	return peopleProducer, intakeDeps{events: eventsRepo, runner: runner}, nil
}

func MustNewConfig(path string) *config.Config {
	cfg, err := yamlreader.NewConfig[config.Config](path)

	if err != nil {
		log.Fatal().Str("path", path).Err(err).Msg("ошибка чтения конфигурации приложения")
		return nil
	}

	return cfg
}

func parseFlags() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	_ = godotenv.Load(".env")

	if configPath == "" {
		configPath = "config/application-local.yaml"
	}
	return configPath
}
