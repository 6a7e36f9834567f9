package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeBridgeConnectionFailed: "Failed to reach the bridge API",
	CodeBridgeInvalidResponse:  "Bridge API returned an unparsable body",
	CodeBridgeMissingField:     "Bridge API response is missing amountToReceive",

	CodeJobTimeout: "Job did not finish before the iteration deadline",

	CodeNotificationFailed:    "Failed to deliver notification",
	CodeTelegramRateLimited:   "Telegram rate limit exceeded",
	CodeTelegramNotAccepted:   "Telegram did not acknowledge the message",
	CodeNotifierNotConfigured: "Notifier credentials are not configured",

	CodeCircuitOpen: "Circuit breaker is open",
}
