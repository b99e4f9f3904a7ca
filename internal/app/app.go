package app

import (
	"go.uber.org/fx"

	"github.com/sari-pos/sari/internal/cache"
	"github.com/sari-pos/sari/internal/config"
	"github.com/sari-pos/sari/internal/database"
	"github.com/sari-pos/sari/internal/logger"
	"github.com/sari-pos/sari/internal/messaging"
	"github.com/sari-pos/sari/internal/observability"
	"github.com/sari-pos/sari/internal/refno"
	repositorycatalog "github.com/sari-pos/sari/internal/repository/catalog"
	repositoryledger "github.com/sari-pos/sari/internal/repository/ledger"
	repositorysettings "github.com/sari-pos/sari/internal/repository/settings"
	grpcserver "github.com/sari-pos/sari/internal/server/grpc"
	httpserver "github.com/sari-pos/sari/internal/server/http"
	servicecatalog "github.com/sari-pos/sari/internal/service/catalog"
	serviceledger "github.com/sari-pos/sari/internal/service/ledger"
	servicesettings "github.com/sari-pos/sari/internal/service/settings"
	transporthttp "github.com/sari-pos/sari/internal/transport/http"
	"github.com/sari-pos/sari/internal/worker"
	workerledger "github.com/sari-pos/sari/internal/worker/ledger"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	refno.Module,
	repositorycatalog.Module,
	repositoryledger.Module,
	repositorysettings.Module,
	servicecatalog.Module,
	serviceledger.Module,
	servicesettings.Module,
)

// Serve wires the HTTP and gRPC transports on top of the core modules.
var Serve = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerledger.Module,
)

// Module is the default application wiring (serving transports).
var Module = Serve
