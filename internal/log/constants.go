package log

const (
	KeyAppName            = "app"
	KeyCacheKey           = "cacheKey"
	KeyCartCount          = "cartCount"
	KeyCartID             = "cartId"
	KeyConfig             = "config"
	KeyDiscountCount      = "discountCount"
	KeyDuration           = "duration"
	KeyItemCount          = "itemCount"
	KeyMigrationPath      = "migrationPath"
	KeyPathValues         = "pathValues"
	KeyProcess            = "process"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestID          = "requestId"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyResponseStatusCode = "statusCode"
	KeySpanID             = "spanId"
	KeyTag                = "tag"
	KeyTraceID            = "traceId"
	KeyUserID             = "userId"
	KeyViolations         = "violations"
)
