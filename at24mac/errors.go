package at24mac

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-at24mac/protocol"
)

// ValueError reports a value outside 0-255 passed to SetValues.
type ValueError = protocol.ValueError

// ConfigurationError indicates an invalid option passed to New.
type ConfigurationError struct {
	// Field is the option that was rejected
	Field string

	// Value is the rejected value
	Value interface{}

	// Err is the underlying validation error, if any
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s=%v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s=%v", e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DeviceNotFoundError indicates that the chip did not acknowledge the probe.
type DeviceNotFoundError struct {
	Addr uint16
	Err  error
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("no device at address 0x%02X: %v", e.Addr, e.Err)
}

func (e *DeviceNotFoundError) Unwrap() error {
	return e.Err
}

// IndexError indicates an index or range outside the EEPROM array.
type IndexError struct {
	// Op is the operation that was refused
	Op string

	// Start and Stop delimit the requested range [Start, Stop)
	Start int
	Stop  int

	// Size is the array capacity
	Size int
}

func (e *IndexError) Error() string {
	if e.Stop == e.Start+1 {
		return fmt.Sprintf("%s: index %d out of range: valid range is 0-%d",
			e.Op, e.Start, e.Size-1)
	}
	return fmt.Sprintf("%s: range [%d, %d) out of range: array holds %d bytes",
		e.Op, e.Start, e.Stop, e.Size)
}

// BusError indicates that a bus transaction failed.
// Writes before the failing transaction are committed; the bytes of the
// failing page are in an undefined state.
type BusError struct {
	// Op is the operation that issued the transaction
	Op string

	// Addr is the 7-bit address of the transaction
	Addr uint16

	// Offset is the sub-address of the failing transaction
	Offset int

	// Err is the error returned by the bus
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s failed at 0x%02X offset %d: %v", e.Op, e.Addr, e.Offset, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// IsBusError returns true if err is or wraps a BusError.
func IsBusError(err error) bool {
	var be *BusError
	return errors.As(err, &be)
}

// IsIndexError returns true if err is or wraps an IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}
