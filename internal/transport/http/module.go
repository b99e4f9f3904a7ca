package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/sari-pos/sari/internal/transport/http/catalog"
	ledgertransport "github.com/sari-pos/sari/internal/transport/http/ledger"
	settingstransport "github.com/sari-pos/sari/internal/transport/http/settings"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	ledgertransport.Module,
	settingstransport.Module,
)
