package http

const (
	KeyHeaderContentType = "Content-Type"
	KeyHeaderRequestID   = "X-Request-Id"
)

const (
	ValueHeaderApplicationJSON = "application/json"
	ValueHeaderProblemJSON     = "application/problem+json"
	ValueHeaderYAML            = "application/yaml"
)

// TimestampFormat renders UTC instants as ISO-8601 with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"
