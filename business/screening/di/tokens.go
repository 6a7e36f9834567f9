// Package di contains dependency injection tokens for the screening context.
package di

import (
	"github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Jobs     = di.NewToken[[]domain.Job]("screening.Jobs")
	Reporter = di.NewToken[app.Reporter]("screening.Reporter")
	Loop     = di.NewToken[*app.Loop]("screening.Loop")
)

// Internal service tokens
var (
	Selector   = di.NewToken[*app.Selector]("screening.Selector")
	Dispatcher = di.NewToken[*app.Dispatcher]("screening.Dispatcher")
)

// GetJobs resolves the expanded job list.
func GetJobs(c di.ServiceRegistry) []domain.Job {
	return di.GetToken(c, Jobs)
}

// GetReporter resolves the progress reporter.
func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

// GetLoop resolves the screening loop.
func GetLoop(c di.ServiceRegistry) *app.Loop {
	return di.GetToken(c, Loop)
}
