package cli

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/astrokernel/imperium/internal/adapters/metrics"
	"github.com/astrokernel/imperium/internal/adapters/persistence"
	"github.com/astrokernel/imperium/internal/application/admission"
	"github.com/astrokernel/imperium/internal/application/common"
	"github.com/astrokernel/imperium/internal/application/gameloop"
	"github.com/astrokernel/imperium/internal/infrastructure/config"
	"github.com/astrokernel/imperium/internal/infrastructure/database"
)

// Container wires configuration, storage, the mediator and the game loop.
// Both the serve and tick commands build one; serve additionally attaches
// the HTTP surface and metrics.
type Container struct {
	Config   *config.Config
	DB       *gorm.DB
	Mediator common.Mediator
	Loop     *gameloop.Loop

	TickCollector *metrics.TickMetricsCollector
}

// NewContainer builds the full dependency graph. When withMetrics is true
// the Prometheus registry is initialized and collectors are registered.
func NewContainer(configPath string, withMetrics bool) (*Container, error) {
	cfg := config.MustLoadConfig(configPath)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	empires := persistence.NewGormEmpireRepository(db)
	bases := persistence.NewGormBaseRepository(db)
	records := persistence.NewGormRecordRepository(db)
	entries := persistence.NewGormQueueRepository(db)
	journal := persistence.NewGormTransactionRepository(db)

	pipeline := admission.NewPipeline(empires, bases, records, entries, nil).WithJournal(journal)

	m := common.NewMediator()
	m.Use(common.LoggingMiddleware())

	c := &Container{
		Config:   cfg,
		DB:       db,
		Mediator: m,
	}

	var tickMetrics gameloop.Metrics
	if withMetrics {
		metrics.InitRegistry()

		commandCollector := metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		m.Use(metrics.PrometheusMiddleware(commandCollector))

		tickCollector := metrics.NewTickMetricsCollector()
		if err := tickCollector.Register(); err != nil {
			return nil, fmt.Errorf("failed to register tick metrics: %w", err)
		}
		c.TickCollector = tickCollector
		tickMetrics = tickCollector
	}

	if err := registerHandlers(m, pipeline); err != nil {
		return nil, err
	}

	scheduler := gameloop.NewConstructionScheduler(empires, records, entries, nil).WithJournal(journal)
	processor := gameloop.NewTickProcessor(empires, bases, records, entries, nil, tickMetrics).WithJournal(journal)
	c.Loop = gameloop.NewLoop(scheduler, processor, cfg.GameLoop.TickInterval)

	return c, nil
}

// Close releases the container's resources
func (c *Container) Close() error {
	return database.Close(c.DB)
}

func registerHandlers(m common.Mediator, pipeline *admission.Pipeline) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"StartStructureCommand", func() error {
			return common.RegisterHandler[*admission.StartStructureCommand](m, admission.NewStartStructureHandler(pipeline))
		}},
		{"StartResearchCommand", func() error {
			return common.RegisterHandler[*admission.StartResearchCommand](m, admission.NewStartResearchHandler(pipeline))
		}},
		{"TrainUnitsCommand", func() error {
			return common.RegisterHandler[*admission.TrainUnitsCommand](m, admission.NewTrainUnitsHandler(pipeline))
		}},
		{"StartDefenseCommand", func() error {
			return common.RegisterHandler[*admission.StartDefenseCommand](m, admission.NewStartDefenseHandler(pipeline))
		}},
		{"CancelCommand", func() error {
			return common.RegisterHandler[*admission.CancelCommand](m, admission.NewCancelHandler(pipeline))
		}},
		{"BaseStatusQuery", func() error {
			return common.RegisterHandler[*admission.BaseStatusQuery](m, admission.NewBaseStatusHandler(pipeline))
		}},
		{"EmpireOverviewQuery", func() error {
			return common.RegisterHandler[*admission.EmpireOverviewQuery](m, admission.NewEmpireOverviewHandler(pipeline))
		}},
		{"TransactionLogQuery", func() error {
			return common.RegisterHandler[*admission.TransactionLogQuery](m, admission.NewTransactionLogHandler(pipeline))
		}},
		{"CatalogQuery", func() error {
			return common.RegisterHandler[*admission.CatalogQuery](m, admission.NewCatalogHandler())
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("failed to register %s handler: %w", r.name, err)
		}
	}
	return nil
}
