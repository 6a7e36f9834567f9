// Package di contains dependency injection tokens for the bridge context.
package di

import (
	"github.com/fd1az/bridge-screener/business/bridge/app"
	"github.com/fd1az/bridge-screener/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Quoter = di.NewToken[app.Quoter]("bridge.Quoter")
)

// GetQuoter resolves the bridge quoter.
func GetQuoter(c di.ServiceRegistry) app.Quoter {
	return di.GetToken(c, Quoter)
}
