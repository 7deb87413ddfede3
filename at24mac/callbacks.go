package at24mac

import "time"

// Progress contains information about a range write in progress.
// Passed to ProgressCallback after each page.
type Progress struct {
	// Chunk is the number of pages handled so far (1-based)
	Chunk int

	// TotalChunks is the number of pages the write was split into
	TotalChunks int

	// Offset is the array offset of the page just handled
	Offset int

	// Skipped is true when the page already held the data and was not written
	Skipped bool

	// BytesWritten is the number of bytes handled so far
	BytesWritten int

	// TotalBytes is the length of the whole write
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the write started
	ElapsedTime time.Duration
}

// ProgressCallback is called after each page of a range write.
// Implementations should return quickly; the next page is not written
// until the callback returns.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the device.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	dev, err := at24mac.New(bus, at24mac.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
