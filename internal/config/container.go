package config

import (
	"errors"

	"pdf-toolbox/internal/codec"
	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/repository"
	"pdf-toolbox/internal/service"
	"pdf-toolbox/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	OperationRepository domain.OperationRepository

	MergeService      *service.MergeService
	SplitService      *service.SplitService
	ConversionService *service.ConversionService
	SecurityService   *service.SecurityService
	InfoService       *service.InfoService
	JobService        *service.JobService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires every dependency from config.
func NewContainerWithConfig(config domain.Config) *Container {
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Operation history goes to Supabase when it is configured.
	supabaseClient := repository.NewSupabaseClient(config, logger.Component(appLogger, "supabase"))
	var operationRepo domain.OperationRepository
	if err := supabaseClient.Initialize(); err != nil {
		if !errors.Is(err, domain.ErrSupabaseDisabled) {
			appLogger.Error("Supabase unavailable; keeping operation history in memory", err)
		}
		operationRepo = repository.NewMemoryOperationRepository()
	} else {
		operationRepo = repository.NewSupabaseOperationRepository(supabaseClient, config.GetOperationHistoryTable(), logger.Component(appLogger, "operations"))
	}

	codecLogger := logger.Component(appLogger, "codec")
	pdfCodec := codec.NewPDFCodec(codecLogger, config.GetEncryptionKeyLength())
	renderer := codec.NewFitzRenderer(codecLogger, 0)
	imageCodec := codec.NewImageCodec(codecLogger)

	return &Container{
		Config:              config,
		Logger:              appLogger,
		SupabaseClient:      supabaseClient,
		OperationRepository: operationRepo,
		MergeService:        service.NewMergeService(pdfCodec, logger.Component(appLogger, "merge")),
		SplitService:        service.NewSplitService(pdfCodec, logger.Component(appLogger, "split")),
		ConversionService:   service.NewConversionService(pdfCodec, renderer, imageCodec, logger.Component(appLogger, "convert")),
		SecurityService:     service.NewSecurityService(pdfCodec, logger.Component(appLogger, "security"), config.GetEncryptionKeyLength()),
		InfoService:         service.NewInfoService(pdfCodec, logger.Component(appLogger, "info")),
		JobService:          service.NewJobService(operationRepo, logger.Component(appLogger, "jobs")),
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSupabaseClient returns the Supabase client instance
func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.SupabaseClient
}
