package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"BiasLens/database/postgres"
	acquisitionHandler "BiasLens/internal/api/acquisition/handler"
	acquisitionRepository "BiasLens/internal/api/acquisition/repository"
	acquisitionService "BiasLens/internal/api/acquisition/service"
	analysisHandler "BiasLens/internal/api/analysis/handler"
	analysisRepository "BiasLens/internal/api/analysis/repository"
	analysisService "BiasLens/internal/api/analysis/service"
	transformHandler "BiasLens/internal/api/transform/handler"
	transformRepository "BiasLens/internal/api/transform/repository"
	transformService "BiasLens/internal/api/transform/service"
	"BiasLens/internal/middleware"
	"BiasLens/pkg/biasservice"
	"BiasLens/pkg/gemini"
	"BiasLens/pkg/httpclient"
	"BiasLens/pkg/imagemodel"
	"BiasLens/pkg/redis"
	"BiasLens/pkg/s3"
	"BiasLens/pkg/utils"
)

type ServerOption func(*Server) error

type Server struct {
	engine           *fiber.App
	env              Env
	db               *sqlx.DB
	log              *logrus.Logger
	middleware       middleware.Middleware
	validator        *validator.Validate
	utils            utils.IUtils
	handlers         []handler
	redisServer      redis.IRedis
	geminiClient     gemini.IGemini
	s3Client         s3.ItfS3
	modelClient      *httpclient.Client
	biasService      biasservice.IBiasService
	transformService transformService.ITransformService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithEnv(env Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New(s.env.DatabaseDSN)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		opts := []middleware.Option{}
		if s.env.RateLimitPerSecond > 0 {
			opts = append(opts, middleware.WithRateLimit(s.env.RateLimitPerSecond, s.env.RateLimitBurst))
		}
		s.middleware = middleware.New(s.log, opts...)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New(s3.Config{
			Region:          s.env.AWSRegion,
			AccessKeyID:     s.env.AWSAccessKeyID,
			SecretAccessKey: s.env.AWSSecretAccessKey,
			Endpoint:        s.env.AWSEndpoint,
			BucketName:      s.env.AWSBucketName,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithGeminiClient is a no-op unless Gemini is the configured face checker.
func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		if s.env.FaceCheckProvider != FaceCheckGemini {
			return nil
		}
		client, err := gemini.NewGeminiClient(s.env.GeminiAPIKey, s.env.GeminiModelName)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithModelService() ServerOption {
	return func(s *Server) error {
		s.modelClient = httpclient.New(s.env.ModelServiceURL, s.env.ModelRequestTimeout)
		return nil
	}
}

func WithBiasService() ServerOption {
	return func(s *Server) error {
		s.biasService = biasservice.New(httpclient.New(s.env.BiasServiceURL, s.env.BiasRequestTimeout))
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) faceChecker() acquisitionService.FaceChecker {
	if s.geminiClient != nil {
		return acquisitionService.NewGeminiFaceChecker(s.geminiClient)
	}
	return acquisitionService.NewServiceFaceChecker(s.biasService)
}

func (s *Server) RegisterHandler() {
	// Transform Domain
	acquisitionRepo := acquisitionRepository.New(s.redisServer, s.env.ImageSetTTL, s.log)
	transformRepo := transformRepository.New(s.db, s.redisServer, s.env.RunSnapshotTTL, s.log)
	s.transformService = transformService.NewTransformService(s.log, transformRepo, acquisitionRepo, imagemodel.New(s.modelClient), s.utils)
	transformHandlers := transformHandler.New(s.log, s.validator, s.middleware, s.transformService)

	// Acquisition Domain
	acquisitionServices := acquisitionService.NewAcquisitionService(s.log, acquisitionRepo, s.s3Client, s.faceChecker(), s.transformService, s.utils)
	acquisitionHandlers := acquisitionHandler.New(s.log, s.validator, s.middleware, acquisitionServices)

	// Analysis Domain
	analysisRepo := analysisRepository.New(s.db, s.log)
	analysisServices := analysisService.NewAnalysisService(s.log, analysisRepo, s.transformService, s.biasService, s.utils)
	analysisHandlers := analysisHandler.New(s.log, s.validator, s.middleware, analysisServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, acquisitionHandlers, transformHandlers, analysisHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewAccessLogMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort))
}

// Shutdown stops accepting requests, then waits for in-flight transformation
// runs before releasing external clients.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if s.transformService != nil {
		done := make(chan struct{})
		go func() {
			s.transformService.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.log.Warn("Shutdown deadline reached with transformation runs still in flight")
			err = errors.Join(err, ctx.Err())
		}
	}

	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
	if s.db != nil {
		err = errors.Join(err, s.db.Close())
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
