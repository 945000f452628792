package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultRunTimeout bounds one full pipeline run (generation + execution)
	DefaultRunTimeout = 60 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultContextProbeTimeout bounds each context-collection subprocess
	DefaultContextProbeTimeout = 2 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of solution records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain records
	DefaultHistoryRetainDays = 30
)

// Speech constants
const (
	// DefaultRecordSeconds is how long --listen captures audio
	DefaultRecordSeconds = 5
	// DefaultTranscribeModel is the speech-to-text model used for --listen
	DefaultTranscribeModel = "whisper-1"
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 400
)
