package constants

// Auth providers
const (
	AuthTypeLDAP  = "ldap"
	AuthTypeLocal = "local"
)

// Record status
const (
	StatusEnabled  int8 = 1
	StatusDisabled int8 = 0
)

// Message roles
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Target database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Connection check status
const (
	ConnectionStatusUnknown = "unknown"
	ConnectionStatusOK      = "ok"
	ConnectionStatusFailed  = "failed"
)

// Import/export formats
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Default names
const (
	DefaultChatName = "New chat"
)

// Project field limits
const (
	ProjectNameMinLen        = 3
	ProjectNameMaxLen        = 100
	ProjectDescriptionMaxLen = 500
)

// JWT
const (
	JWTTypeAccess  = "access"
	JWTTypeRefresh = "refresh"
)

// Gin context keys
const (
	CtxUser      = "user"
	CtxUserID    = "user_id"
	CtxRequestID = "request_id"
)

// HTTP headers
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
	HeaderRequestID     = "X-Request-ID"
)
