package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/analytics"
	"github.com/Artexxx/HR-People-Analytics/internal/blob"
	"github.com/Artexxx/HR-People-Analytics/internal/dto"
	"github.com/Artexxx/HR-People-Analytics/internal/ingest"
	"github.com/Artexxx/HR-People-Analytics/internal/metrics"
)

type PeopleRepository interface {
	Insert(ctx context.Context, p dto.Person) (int64, error)
	All(ctx context.Context) ([]dto.Person, error)
	Page(ctx context.Context, page, perPage int) ([]dto.Person, int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Importer interface {
	Import(ctx context.Context, name string, r io.Reader) (ingest.Result, error)
}

type Engine interface {
	Compute(people []dto.Person) (*analytics.Bundle, error)
}

type EventsRepository interface {
	ListEvents(ctx context.Context) ([]dto.IntakeEvent, error)
	ListDLQ(ctx context.Context) ([]dto.IntakeDLQ, error)
	ResetAll(ctx context.Context) error
}

type Producer interface {
	PublishCreated(ctx context.Context, person dto.Person) error
	PublishImported(ctx context.Context, file string, imported int, artifactKey string) error
	PublishDeleted(ctx context.Context, deleted int64) error
}

type ServiceDeps struct {
	Port           int
	MaxUploadBytes int64

	PeopleRepo PeopleRepository
	Importer   Importer
	Engine     Engine
	Archive    blob.Store
	Metrics    *metrics.Metrics

	// EventsRepo и Producer равны nil, если Kafka выключена.
	EventsRepo EventsRepository
	Producer   Producer
}

type Service struct {
	r        *router.Router
	server   *fasthttp.Server
	port     int
	maxBytes int64

	people   PeopleRepository
	importer Importer
	engine   Engine
	archive  blob.Store
	metrics  *metrics.Metrics
	events   EventsRepository
	producer Producer
}

func NewService(d ServiceDeps) *Service {
	rt := router.New()
	rt.SaveMatchedRoutePath = true

	s := &Service{
		r:        rt,
		port:     d.Port,
		maxBytes: d.MaxUploadBytes,
		people:   d.PeopleRepo,
		importer: d.Importer,
		engine:   d.Engine,
		archive:  d.Archive,
		metrics:  d.Metrics,
		events:   d.EventsRepo,
		producer: d.Producer,
	}

	s.mountRoutes()

	bodyLimit := int(d.MaxUploadBytes) + 1<<20 // накладные расходы multipart
	if d.MaxUploadBytes <= 0 {
		bodyLimit = fasthttp.DefaultMaxRequestBodySize
	}

	s.server = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "people-analytics",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		MaxRequestBodySize: bodyLimit,
	}

	return s
}

// Handler возвращает роутер, обёрнутый в цепочку middleware.
func (s *Service) Handler() fasthttp.RequestHandler {
	return RecoveryMiddleware(LoggingMiddleware(s.metrics, CORS(s.r.Handler)))
}

func (s *Service) Start(ctx context.Context) error {
	log.Info().Int("port", s.port).Msg("Starting people API")

	emergencyShutdown := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe(fmt.Sprintf(":%d", s.port))
		emergencyShutdown <- err
	}()

	select {
	case <-ctx.Done():
		return s.server.Shutdown()
	case e := <-emergencyShutdown:
		return e
	}
}

func (s *Service) mountRoutes() {
	// HTML-страницы
	s.r.GET("/", s.indexPage)
	s.r.GET("/employees", s.employeesPage)
	s.r.POST("/employees/delete-all", s.deleteAllForm)
	s.r.GET("/add", s.addPage)
	s.r.POST("/add", s.addSubmit)
	s.r.GET("/upload", s.uploadPage)
	s.r.POST("/upload", s.uploadSubmit)
	s.r.GET("/analytics", s.analyticsPage)

	// JSON API
	s.r.GET("/api/employees", s.listEmployees)
	s.r.GET("/api/people", s.exportPeople)
	s.r.GET("/api/people.xlsx", s.exportPeopleXLSX)
	s.r.POST("/api/people", s.createPerson)
	s.r.DELETE("/api/people", s.deleteAllPeople)
	s.r.POST("/api/upload", s.uploadPeople)
	s.r.GET("/api/uploads", s.listUploads)
	s.r.GET("/api/uploads/{key:*}", s.downloadUpload)
	s.r.DELETE("/api/uploads/{key:*}", s.deleteUpload)
	s.r.GET("/api/analytics", s.analyticsJSON)

	// Журнал intake
	s.r.GET("/events", s.listEvents)
	s.r.GET("/dlq", s.listDLQ)
	s.r.POST("/admin/reset", s.resetHandler)

	// Здоровье и метрики
	s.r.GET("/health", s.healthHandler)
	if s.metrics != nil {
		s.r.GET("/metrics", s.metrics.Handler())
	}
}

// publish вызывает fn, если настроен продюсер. Ошибки только логируются,
// источник истины это хранилище записей.
func (s *Service) publish(event string, fn func(p Producer) error) {
	if s.producer == nil {
		return
	}
	if err := fn(s.producer); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("publish event")
	}
}
