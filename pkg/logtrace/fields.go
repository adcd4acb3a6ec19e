package logtrace

// Fields is a type alias for structured log fields
type Fields map[string]interface{}

// WithFields returns a copy of base with extra fields merged in.
func WithFields(base Fields, extra Fields) Fields {
	fields := Fields{}
	for key, value := range base {
		fields[key] = value
	}
	for key, value := range extra {
		fields[key] = value
	}
	return fields
}

const (
	FieldCorrelationID = "correlation_id"
	FieldOrigin        = "origin"
	FieldMethod        = "method"
	FieldModule        = "module"
	FieldError         = "error"
	FieldStatus        = "status"
	FieldAsset         = "asset"
	FieldURL           = "url"
	FieldLogFile       = "log_file"
	FieldSessionID     = "session_id"
	FieldRunID         = "run_id"
	FieldRunIndex      = "run_index"
	FieldClient        = "client"
	FieldBytes         = "bytes"
	FieldLines         = "lines"
	FieldDurationMS    = "duration_ms"
	FieldPath          = "path"
	FieldHashHex       = "hash_hex"
)
