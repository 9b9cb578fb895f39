// Package di wires the application together. Construction is explicit
// and ordered; each component receives exactly the collaborators it
// declares.
package di

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	cmdhandlers "semcanvas/application/commands/handlers"
	"semcanvas/application/ports"
	"semcanvas/application/queries"
	querybus "semcanvas/application/queries/bus"
	qryhandlers "semcanvas/application/queries/handlers"
	"semcanvas/application/services/sync"
	"semcanvas/application/services/temporal"
	domainconfig "semcanvas/domain/config"
	"semcanvas/infrastructure/config"
	"semcanvas/infrastructure/events"
	"semcanvas/infrastructure/persistence/sqlite"
	"semcanvas/interfaces/ws"
	"semcanvas/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Store        *sqlite.Store

	Artifacts     ports.ArtifactRepository
	Relationships ports.RelationshipRepository
	Temporals     ports.TemporalRepository
	Snapshots     ports.SnapshotStore

	EventBus *events.Bus
	Hub      *ws.Hub
	Notifier ports.Notifier

	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus

	Drafts  *temporal.Service
	Outline *sync.Service
}

// InitializeContainer creates a fully wired container
func InitializeContainer(_ context.Context, cfg *config.Config) (*Container, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	domainCfg := domainconfig.DefaultDomainConfig()

	artifacts := sqlite.NewArtifactRepository(store)
	relationships := sqlite.NewRelationshipRepository(store)
	temporals := sqlite.NewTemporalRepository(store)
	snapshots := sqlite.NewSnapshotStore(store)

	eventBus := events.NewBus(logger)
	hub := ws.NewHub(logger)
	if err := eventBus.Subscribe(events.TypeAll, hub); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe websocket hub")
	}
	notifier := ws.NewNotifier(hub, logger)

	commandBus, err := registerCommands(artifacts, relationships, eventBus, domainCfg, logger)
	if err != nil {
		return nil, err
	}
	queryBus, err := registerQueries(artifacts, relationships, temporals, logger)
	if err != nil {
		return nil, err
	}

	drafts := temporal.NewService(domainCfg, temporals, artifacts, eventBus, notifier, logger)
	outline := sync.NewService(domainCfg, artifacts, relationships, nil, eventBus, logger)

	hub.AttachCanvas(ws.CanvasDeps{
		Domain:     domainCfg,
		Dispatcher: commandBus,
		Drafts:     drafts,
		Notifier:   notifier,
	})

	return &Container{
		Config:        cfg,
		DomainConfig:  domainCfg,
		Logger:        logger,
		Store:         store,
		Artifacts:     artifacts,
		Relationships: relationships,
		Temporals:     temporals,
		Snapshots:     snapshots,
		EventBus:      eventBus,
		Hub:           hub,
		Notifier:      notifier,
		CommandBus:    commandBus,
		QueryBus:      queryBus,
		Drafts:        drafts,
		Outline:       outline,
	}, nil
}

// Close releases the container's resources
func (c *Container) Close() error {
	return c.Store.Close()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func registerCommands(
	artifacts ports.ArtifactRepository,
	relationships ports.RelationshipRepository,
	eventBus ports.EventBus,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateArtifactCommand{}, cmdhandlers.NewCreateArtifactHandler(artifacts, eventBus, domainCfg, logger)},
		{commands.UpdateArtifactCommand{}, cmdhandlers.NewUpdateArtifactHandler(artifacts, eventBus, domainCfg, logger)},
		{commands.MoveArtifactCommand{}, cmdhandlers.NewMoveArtifactHandler(artifacts, eventBus, logger)},
		{commands.DeleteArtifactCommand{}, cmdhandlers.NewDeleteArtifactHandler(artifacts, relationships, eventBus, logger)},
		{commands.BulkDeleteArtifactsCommand{}, cmdhandlers.NewBulkDeleteArtifactsHandler(artifacts, relationships, eventBus, logger)},
		{commands.CreateRelationshipCommand{}, cmdhandlers.NewCreateRelationshipHandler(artifacts, relationships, eventBus, domainCfg, logger)},
		{commands.DeleteRelationshipCommand{}, cmdhandlers.NewDeleteRelationshipHandler(relationships, eventBus, logger)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, errors.Wrap(err, "failed to register command handler")
		}
	}
	return commandBus, nil
}

func registerQueries(
	artifacts ports.ArtifactRepository,
	relationships ports.RelationshipRepository,
	temporals ports.TemporalRepository,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetGraphQuery{}, qryhandlers.NewGetGraphHandler(artifacts, relationships, temporals, logger)},
		{queries.GetCoherenceQuery{}, qryhandlers.NewGetCoherenceHandler(artifacts, relationships, logger)},
		{queries.SearchArtifactsQuery{}, qryhandlers.NewSearchArtifactsHandler(artifacts, logger)},
		{queries.GetArtifactQuery{}, qryhandlers.NewGetArtifactHandler(artifacts, logger)},
		{queries.ListArtifactsQuery{}, qryhandlers.NewListArtifactsHandler(artifacts, logger)},
		{queries.ListRelationshipsQuery{}, qryhandlers.NewListRelationshipsHandler(relationships, logger)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, errors.Wrap(err, "failed to register query handler")
		}
	}
	return queryBus, nil
}
