// Package bridge implements the bridge bounded context: output estimates for
// cross-chain transfers.
package bridge

import (
	"context"

	"github.com/fd1az/bridge-screener/business/bridge/app"
	bridgeDI "github.com/fd1az/bridge-screener/business/bridge/di"
	"github.com/fd1az/bridge-screener/business/bridge/infra/synapse"
	"github.com/fd1az/bridge-screener/internal/config"
	"github.com/fd1az/bridge-screener/internal/di"
	"github.com/fd1az/bridge-screener/internal/health"
	"github.com/fd1az/bridge-screener/internal/httpclient"
	"github.com/fd1az/bridge-screener/internal/logger"
	"github.com/fd1az/bridge-screener/internal/monolith"
	"github.com/fd1az/bridge-screener/pkg/ui"
)

// Module implements the bridge bounded context.
type Module struct{}

// RegisterServices registers the quoter with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, bridgeDI.Quoter, func(sr di.ServiceRegistry) app.Quoter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := synapse.NewClient(synapse.Config{
			BaseURL: cfg.Settings.BridgeAPI,
			Timeout: cfg.Settings.RequestTimeoutDuration(),
			Retry:   httpclient.DefaultRetryPolicy(),
		}, log)
		if err != nil {
			panic("failed to create synapse client: " + err.Error())
		}
		return client
	})

	return nil
}

// Startup resolves the quoter so a bad client setup fails before the loop,
// and exposes its circuit state on the health endpoint.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	quoter := bridgeDI.GetQuoter(mono.Services())
	if client, ok := quoter.(*synapse.Client); ok {
		if hs, ok := mono.Services().Get("health").(*health.Server); ok && hs != nil {
			hs.RegisterCheck("bridge_circuit", client.CircuitCheck())
		}
	}
	if mono.Config().TUIMode {
		ui.Send(ui.StartupMsg{Step: "bridge", Status: "done"})
	}
	mono.Logger().Info(ctx, "bridge module started", "api", mono.Config().Settings.BridgeAPI)
	return nil
}
