package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeInvalidPath          = "INVALID_PATH"
	CodeIDRequired           = "ID_REQUIRED"
	CodeInvalidIDFormat      = "INVALID_ID_FORMAT"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
)
