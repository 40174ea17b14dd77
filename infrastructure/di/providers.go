package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"graphnav-backend/application/ports"
	"graphnav-backend/application/services/traversal"
	"graphnav-backend/infrastructure/config"
	"graphnav-backend/infrastructure/observability"
	dynamostore "graphnav-backend/infrastructure/persistence/dynamodb"
	memorystore "graphnav-backend/infrastructure/persistence/memory"
	"graphnav-backend/interfaces/http/rest"
	pkgerrors "graphnav-backend/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	ErrorHandler     *pkgerrors.ErrorHandler
	Store            ports.GraphStore
	Collector        *observability.Collector
	DynamicTraversal *config.DynamicTraversal
	TraversalService *traversal.Service
	Router           *rest.Router
	Handler          http.Handler
}

// provideLogger creates a structured logger appropriate for the environment.
// Production uses JSON format, development uses console format.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err == nil {
		zapConfig.Level = level
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// provideErrorHandler creates the centralized HTTP error handler
func provideErrorHandler(logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger)
}

// provideGraphStore selects the store backend based on configuration
func provideGraphStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.GraphStore, error) {
	switch cfg.GraphStore {
	case config.StoreMemory:
		logger.Info("Using in-memory graph store")
		return memorystore.NewGraphStore(), nil
	case config.StoreDynamoDB:
		client, err := newDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Using DynamoDB graph store",
			zap.String("table", cfg.DynamoDBTable),
			zap.String("region", cfg.AWSRegion))
		return dynamostore.NewGraphStore(client, cfg.DynamoDBTable, cfg.SourceIndexName, cfg.TargetIndexName, logger), nil
	default:
		return nil, fmt.Errorf("unknown graph store backend: %s", cfg.GraphStore)
	}
}

func newDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		o.HTTPClient = &http.Client{
			Timeout: 15 * time.Second,
		}
	}), nil
}

// provideCollector creates the Prometheus metrics collector
func provideCollector() *observability.Collector {
	return observability.NewCollector("graphnav")
}

// provideDynamicTraversal seeds the hot-reloadable traversal bounds
func provideDynamicTraversal(cfg *config.Config) *config.DynamicTraversal {
	return config.NewDynamicTraversal(cfg.Traversal)
}

// provideTraversalService assembles the connected-nodes query pipeline.
// Bounds are read from the dynamic snapshot on every traversal so config
// reloads take effect without a restart.
func provideTraversalService(
	store ports.GraphStore,
	dynamic *config.DynamicTraversal,
	collector *observability.Collector,
	logger *zap.Logger,
) *traversal.Service {
	bounds := func() traversal.Bounds {
		snapshot := dynamic.Snapshot()
		return traversal.Bounds{
			MaxDepth:   snapshot.MaxDepth,
			MaxVisited: snapshot.MaxVisited,
		}
	}
	engine := traversal.NewEngine(store, bounds, logger)
	assembler := traversal.NewAssembler(store, logger)
	return traversal.NewService(store, engine, assembler, collector, logger)
}

// provideRouter creates the HTTP router
func provideRouter(
	cfg *config.Config,
	store ports.GraphStore,
	traversalService *traversal.Service,
	collector *observability.Collector,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
) *rest.Router {
	return rest.NewRouter(cfg, store, traversalService, collector, logger, errorHandler)
}

// provideHandler builds the final HTTP handler from the router
func provideHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
