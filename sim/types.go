package sim

import (
	"errors"
	"fmt"
)

// Kind is the shape of a bus transaction.
type Kind int

const (
	// KindWrite is a plain write transaction
	KindWrite Kind = iota

	// KindWriteRead is a write followed by a repeated-start read
	KindWriteRead
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindWriteRead:
		return "write-read"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transaction is one logged bus transaction.
type Transaction struct {
	// Seq is the position of the transaction since the chip was created
	Seq int

	Kind Kind

	// Addr is the 7-bit target address
	Addr uint16

	// W holds the bytes written, sub-address first
	W []byte

	// ReadLen is the number of bytes requested by a WriteRead
	ReadLen int

	// Err is the error the transaction failed with, if any
	Err error
}

// NoAckError reports that the simulated chip did not acknowledge.
type NoAckError struct {
	Addr uint16

	// Phase is where the acknowledge was missing: "address", "data" or "busy"
	Phase string
}

func (e *NoAckError) Error() string {
	return fmt.Sprintf("no ack from 0x%02X (%s)", e.Addr, e.Phase)
}

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("sim: injected bus fault")

// FaultFunc decides whether a transaction fails. A non-nil return fails
// the transaction before it touches the chip state.
type FaultFunc func(tx Transaction) error

// FailNth fails the n-th transaction (0-based) seen after installation.
func FailNth(n int, err error) FaultFunc {
	if err == nil {
		err = ErrInjected
	}
	count := 0
	return func(tx Transaction) error {
		defer func() { count++ }()
		if count == n {
			return err
		}
		return nil
	}
}

// FailAll fails every transaction.
func FailAll(err error) FaultFunc {
	if err == nil {
		err = ErrInjected
	}
	return func(Transaction) error {
		return err
	}
}

// FailKind fails every transaction of the given kind.
func FailKind(kind Kind, err error) FaultFunc {
	if err == nil {
		err = ErrInjected
	}
	return func(tx Transaction) error {
		if tx.Kind == kind {
			return err
		}
		return nil
	}
}
