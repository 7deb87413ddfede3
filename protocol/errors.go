package protocol

import "fmt"

// ValueError reports a value that does not fit in an EEPROM cell.
type ValueError struct {
	// Index is the position of the value in the caller's input, -1 for a single value
	Index int

	// Value is the offending value
	Value int
}

func (e *ValueError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("value %d out of byte range 0-%d", e.Value, MaxByteValue)
	}
	return fmt.Sprintf("value %d at position %d out of byte range 0-%d", e.Value, e.Index, MaxByteValue)
}

// IsValueError returns true if the error is a ValueError.
func IsValueError(err error) bool {
	_, ok := err.(*ValueError)
	return ok
}

// ConfigError reports an unsupported geometry or model setting.
type ConfigError struct {
	// Field is the setting that failed validation
	Field string

	// Reason describes why
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
