// Package di contains dependency injection tokens for the alerting context.
package di

import (
	"github.com/fd1az/bridge-screener/business/alerting/app"
	"github.com/fd1az/bridge-screener/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Notifier = di.NewToken[app.Notifier]("alerting.Notifier")
	Router   = di.NewToken[*app.Router]("alerting.Router")
)

// GetNotifier resolves the notifier.
func GetNotifier(c di.ServiceRegistry) app.Notifier {
	return di.GetToken(c, Notifier)
}

// GetRouter resolves the alert router.
func GetRouter(c di.ServiceRegistry) *app.Router {
	return di.GetToken(c, Router)
}
