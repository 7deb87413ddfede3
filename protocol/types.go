package protocol

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Model identifies a member of the AT24MAC family.
type Model int

const (
	// ModelAT24MAC402 carries an EUI-48 MAC address.
	ModelAT24MAC402 Model = 402

	// ModelAT24MAC602 carries an EUI-64 MAC address.
	ModelAT24MAC602 Model = 602
)

// Valid reports whether m is a known model.
func (m Model) Valid() bool {
	return m == ModelAT24MAC402 || m == ModelAT24MAC602
}

// String returns the part number.
func (m Model) String() string {
	switch m {
	case ModelAT24MAC402:
		return "AT24MAC402"
	case ModelAT24MAC602:
		return "AT24MAC602"
	default:
		return fmt.Sprintf("unknown model %d", int(m))
	}
}

// Geometry returns the EEPROM array layout of the model.
func (m Model) Geometry() Geometry {
	return Geometry{
		Size:        DefaultSize,
		PageSize:    DefaultPageSize,
		AddressSize: DefaultAddressSize,
	}
}

// MACLocation returns the sub-address of the factory MAC in the extended memory.
func (m Model) MACLocation() byte {
	if m == ModelAT24MAC602 {
		return EUI64Location
	}
	return EUI48Location
}

// MACLength returns the MAC size in bytes: 6 for EUI-48, 8 for EUI-64.
func (m Model) MACLength() int {
	if m == ModelAT24MAC602 {
		return EUI64Length
	}
	return EUI48Length
}

// ParseModel accepts "402", "602", "AT24MAC402" or "AT24MAC602".
func ParseModel(s string) (Model, error) {
	switch s {
	case "402", "AT24MAC402", "at24mac402":
		return ModelAT24MAC402, nil
	case "602", "AT24MAC602", "at24mac602":
		return ModelAT24MAC602, nil
	default:
		return 0, &ConfigError{Field: "model", Reason: fmt.Sprintf("unknown model %q", s)}
	}
}

// Geometry describes the layout of an EEPROM array.
type Geometry struct {
	// Size is the array capacity in bytes
	Size int `yaml:"size" cbor:"1,keyasint"`

	// PageSize is the number of bytes one write cycle can commit.
	// Writes crossing a page boundary wrap within the page on the chip.
	PageSize int `yaml:"page_size" cbor:"2,keyasint"`

	// AddressSize is the number of big-endian sub-address bytes (1 or 2)
	AddressSize int `yaml:"address_size" cbor:"3,keyasint"`
}

// Validate checks that the geometry can be driven by this package.
func (g Geometry) Validate() error {
	if g.Size <= 0 {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("must be positive, got %d", g.Size)}
	}
	if g.PageSize <= 0 || g.PageSize&(g.PageSize-1) != 0 {
		return &ConfigError{Field: "page_size", Reason: fmt.Sprintf("must be a positive power of two, got %d", g.PageSize)}
	}
	if g.PageSize > g.Size {
		return &ConfigError{Field: "page_size", Reason: fmt.Sprintf("%d exceeds array size %d", g.PageSize, g.Size)}
	}
	if g.AddressSize < 1 || g.AddressSize > MaxAddressSize {
		return &ConfigError{Field: "address_size", Reason: fmt.Sprintf("must be 1 or 2, got %d", g.AddressSize)}
	}
	if limit := 1 << (8 * g.AddressSize); g.Size > limit {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("%d bytes not addressable with %d address byte(s)", g.Size, g.AddressSize)}
	}
	return nil
}

// Pages returns the number of pages in the array.
func (g Geometry) Pages() int {
	return (g.Size + g.PageSize - 1) / g.PageSize
}

// Serial is the factory-programmed 128-bit unique serial number.
type Serial [SerialNumberLength]byte

// Bytes returns a copy of the serial number, most significant byte first.
func (s Serial) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s[:])
	return b
}

// String returns the serial number as upper-case hex.
func (s Serial) String() string {
	return fmt.Sprintf("%X", s[:])
}

// BigInt interprets the serial number as a big-endian unsigned integer.
func (s Serial) BigInt() *big.Int {
	return new(big.Int).SetBytes(s[:])
}

// UUID returns the 128-bit serial as a UUID value. The bytes are used
// verbatim; version and variant bits are whatever the factory programmed.
func (s Serial) UUID() uuid.UUID {
	return uuid.UUID(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Serial) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Serial) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid serial number: %w", err)
	}
	if len(b) != SerialNumberLength {
		return fmt.Errorf("invalid serial number: got %d bytes, expected %d", len(b), SerialNumberLength)
	}
	copy(s[:], b)
	return nil
}
