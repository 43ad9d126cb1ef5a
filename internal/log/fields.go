package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldReason     = "reason"

	FieldAccountID = "account_id"
	FieldSessionID = "session_id"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentBank      = "bank"
	ComponentJournal   = "journal"
	ComponentWorker    = "worker"
	ComponentSession   = "session"
	ComponentLive      = "live"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operations, one per user action.
const (
	OpLogin    = "login"
	OpLogout   = "logout"
	OpTransfer = "transfer"
	OpLoan     = "loan"
	OpClose    = "close"
	OpSort     = "sort"
)

// LogFields collects attributes before handing them to slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithReason records why an action was refused.
func (f LogFields) WithReason(reason string) LogFields {
	if reason != "" {
		f[FieldReason] = reason
	}
	return f
}

func (f LogFields) WithSession(sessionID, accountID string) LogFields {
	f[FieldSessionID] = sessionID
	if accountID != "" {
		f[FieldAccountID] = accountID
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key/value pairs.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
