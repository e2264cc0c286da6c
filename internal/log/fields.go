package log

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldFund       = "fund"
	FieldCategory   = "category"
	FieldMinReturn  = "min_return"
	FieldMatched    = "matched"
	FieldPrincipal  = "principal"
	FieldHorizon    = "horizon_years"
	FieldProjected  = "projected"
	FieldLeadID     = "lead_id"
	FieldLeadRef    = "lead_ref"
	FieldMessageLen = "message_len"
	FieldBatchSize  = "batch_size"
	FieldBackend    = "backend"
	FieldTemplate   = "template"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentFunds     = "funds"
	ComponentChat      = "chat"
	ComponentLeads     = "leads"
	ComponentSession   = "session"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpFilter   = "filter"
	OpProject  = "project"
	OpReply    = "reply"
	OpSubmit   = "submit"
	OpExport   = "export"
	OpValidate = "validate"
	OpParse    = "parse"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Error categories.
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields builds structured log attributes.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithSessionID(id string) LogFields {
	if id != "" {
		f[FieldSessionID] = id
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError is a no-op for nil errors.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithTemplate(name string) LogFields {
	f[FieldTemplate] = name
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithFilter records the sidebar criteria and how many funds matched.
func (f LogFields) WithFilter(category string, minReturn float64, matched int) LogFields {
	f[FieldCategory] = category
	f[FieldMinReturn] = minReturn
	f[FieldMatched] = matched
	return f
}

// WithProjection records a calculator run.
func (f LogFields) WithProjection(fund string, principal float64, years int) LogFields {
	f[FieldFund] = fund
	f[FieldPrincipal] = principal
	f[FieldHorizon] = years
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key/value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
