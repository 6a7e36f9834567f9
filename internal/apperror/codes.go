package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Screener-specific error codes
const (
	// Bridge API errors
	CodeBridgeConnectionFailed Code = "BRIDGE_CONNECTION_FAILED"
	CodeBridgeInvalidResponse  Code = "BRIDGE_INVALID_RESPONSE"
	CodeBridgeMissingField     Code = "BRIDGE_MISSING_FIELD"

	// Dispatch errors
	CodeJobTimeout Code = "JOB_TIMEOUT"

	// Notification errors
	CodeNotificationFailed    Code = "NOTIFICATION_FAILED"
	CodeTelegramRateLimited   Code = "TELEGRAM_RATE_LIMITED"
	CodeTelegramNotAccepted   Code = "TELEGRAM_NOT_ACCEPTED"
	CodeNotifierNotConfigured Code = "NOTIFIER_NOT_CONFIGURED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

// Fault is the coarse bucket an error code falls in. It is what ends up in
// the error log and in the fault counters.
type Fault string

// Fault buckets.
const (
	FaultConfig    Fault = "config"
	FaultTransport Fault = "transport"
	FaultResponse  Fault = "response"
	FaultTimeout   Fault = "job_timeout"
	FaultNotifier  Fault = "notifier"
	FaultInternal  Fault = "internal"
)

var faults = map[Code]Fault{
	CodeRequiredField:          FaultConfig,
	CodeInvalidInput:           FaultConfig,
	CodeValidationError:        FaultConfig,
	CodeConfigurationError:     FaultConfig,
	CodeBridgeConnectionFailed: FaultTransport,
	CodeCircuitOpen:            FaultTransport,
	CodeBridgeInvalidResponse:  FaultResponse,
	CodeBridgeMissingField:     FaultResponse,
	CodeJobTimeout:             FaultTimeout,
	CodeNotificationFailed:     FaultNotifier,
	CodeTelegramRateLimited:    FaultNotifier,
	CodeTelegramNotAccepted:    FaultNotifier,
	CodeNotifierNotConfigured:  FaultNotifier,
}
