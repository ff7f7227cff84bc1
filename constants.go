package bodyparser

const (
	MIMETextPlain          = "text/plain; charset=utf-8"
	MIMEApplicationJSON    = "application/json; charset=utf-8"
	MIMEApplicationProblem = "application/problem+json"
)

const (
	HeaderContentEncoding = "Content-Encoding"
	HeaderContentLength   = "Content-Length"
	HeaderContentType     = "Content-Type"
)
