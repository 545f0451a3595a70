package logger

// LoggerInterface is what components depend on, so tests can capture log
// output without the channel machinery.
type LoggerInterface interface {
	Print(s string)
	Printf(s string, as ...interface{})
	PrintError(source string, err error)
}
