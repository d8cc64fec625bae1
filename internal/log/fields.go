package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldDateKey       = "date"
	FieldFilter        = "filter"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentSettings  = "settings"
	ComponentMigration = "migration"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
)

// Operations defines standard operation names.
const (
	OpAdd      = "add"
	OpEdit     = "edit"
	OpRemove   = "remove"
	OpList     = "list"
	OpSummary  = "summary"
	OpHistory  = "history"
	OpSettings = "settings"
	OpImport   = "import"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
