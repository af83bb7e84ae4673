package analyses

// Failure classification codes recorded on telemetry events.
const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrorCodeParseFailure      = "PARSE_FAILURE"
	ErrorCodeUnreadableFile    = "UNREADABLE_FILE"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMError          = "LLM_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
