package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/apperror"
)

var arbitrum = bridgeDomain.Network{Key: "arbitrum", Name: "Arbitrum", ChainID: 42161, Decimals: 6, Token: "USDC"}

func TestDispatch_CollectsRecordsByID(t *testing.T) {
	d := newTestDispatcher(table(map[string]string{"100": "106", "1000": "990"}), time.Second)

	jobs := []domain.Job{usdcJob(ethereum, optimism), usdcJob(optimism, ethereum)}
	res := d.Dispatch(context.Background(), jobs)

	require.Len(t, res.Records, 2)
	assert.Contains(t, res.Records, domain.RecordID("Ethereum", "Optimism", dec("6")))
	assert.Contains(t, res.Records, domain.RecordID("Optimism", "Ethereum", dec("6")))
	assert.Zero(t, res.Faulted)
	assert.Zero(t, res.TimedOut)
}

func TestDispatch_FaultIsolatedToItsJob(t *testing.T) {
	q := quoteFunc(func(_ context.Context, amountIn decimal.Decimal, in, _ bridgeDomain.Network) (decimal.Decimal, error) {
		if in.Name == "Arbitrum" {
			return decimal.Zero, apperror.New(apperror.CodeBridgeMissingField)
		}
		return amountIn.Add(dec("10")), nil
	})
	d := newTestDispatcher(q, time.Second)

	jobs := []domain.Job{usdcJob(ethereum, optimism), usdcJob(arbitrum, optimism)}
	res := d.Dispatch(context.Background(), jobs)

	assert.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Faulted)
}

func TestDispatch_FaultStopsSamplingButKeepsEarlierSamples(t *testing.T) {
	var calls int32
	q := quoteFunc(func(_ context.Context, amountIn decimal.Decimal, _, _ bridgeDomain.Network) (decimal.Decimal, error) {
		atomic.AddInt32(&calls, 1)
		if amountIn.Equal(dec("1000")) {
			return decimal.Zero, apperror.New(apperror.CodeBridgeConnectionFailed)
		}
		return amountIn.Add(dec("8")), nil
	})
	d := newTestDispatcher(q, time.Second)

	job := usdcJob(ethereum, optimism)
	job.Amounts = decs("100", "1000", "5000")
	res := d.Dispatch(context.Background(), []domain.Job{job})

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "sampling must stop at the first fault")
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Faulted)
}

func TestDispatch_DeadlineAbandonsSlowJobs(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	q := quoteFunc(func(ctx context.Context, amountIn decimal.Decimal, in, _ bridgeDomain.Network) (decimal.Decimal, error) {
		if in.Name == "Arbitrum" {
			<-release
			return amountIn.Add(dec("10")), nil
		}
		return amountIn.Add(dec("10")), nil
	})
	d := newTestDispatcher(q, 100*time.Millisecond)

	jobs := []domain.Job{usdcJob(ethereum, optimism), usdcJob(arbitrum, optimism)}

	start := time.Now()
	res := d.Dispatch(context.Background(), jobs)

	assert.Less(t, time.Since(start), time.Second, "coordinator must return at the deadline")
	assert.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.TimedOut)
}

func TestDispatch_RespectsWorkerCap(t *testing.T) {
	var inFlight, peak int32
	q := quoteFunc(func(_ context.Context, amountIn decimal.Decimal, _, _ bridgeDomain.Network) (decimal.Decimal, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return amountIn, nil
	})

	d, err := NewDispatcher(q, NewSelector(DefaultMinDiff), DispatcherConfig{MaxWait: 5 * time.Second, MaxWorkers: 2}, discard(), discard())
	require.NoError(t, err)

	jobs := make([]domain.Job, 8)
	for i := range jobs {
		jobs[i] = usdcJob(ethereum, optimism)
	}
	res := d.Dispatch(context.Background(), jobs)

	assert.Zero(t, res.TimedOut)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestDispatch_EmptyJobList(t *testing.T) {
	res := newTestDispatcher(table(nil), time.Second).Dispatch(context.Background(), nil)
	assert.Empty(t, res.Records)
}
