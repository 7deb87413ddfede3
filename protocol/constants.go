package protocol

import "time"

// I2C address families per the AT24MAC402/602 datasheet, section 7.
const (
	// EEPROMBaseAddress is the 7-bit address of the EEPROM array with A2..A0 low.
	EEPROMBaseAddress = 0x50

	// EUIBaseAddress is the 7-bit address of the extended memory block
	// holding the serial number and EUI with A2..A0 low.
	EUIBaseAddress = 0x58

	// AddressPinsMask covers the three strap pins A2, A1, A0.
	AddressPinsMask = 0x07

	// DefaultAddressPins is the strapping used by most carrier boards (A2 high).
	DefaultAddressPins = 0b100
)

// Extended memory map.
const (
	// SerialNumberLocation is the sub-address of the 128-bit serial number.
	SerialNumberLocation = 0x80

	// SerialNumberLength is the size of the serial number in bytes.
	SerialNumberLength = 16

	// EUI48Location is the sub-address of the EUI-48 MAC (AT24MAC402).
	EUI48Location = 0x9A

	// EUI48Length is the size of an EUI-48 MAC in bytes.
	EUI48Length = 6

	// EUI64Location is the sub-address of the EUI-64 MAC (AT24MAC602).
	EUI64Location = 0x98

	// EUI64Length is the size of an EUI-64 MAC in bytes.
	EUI64Length = 8
)

// EEPROM array geometry for the AT24MAC402/602.
const (
	// DefaultSize is the array capacity in bytes (2 Kbit).
	DefaultSize = 256

	// DefaultPageSize is the number of bytes committed in one write cycle.
	DefaultPageSize = 16

	// DefaultAddressSize is the number of sub-address bytes sent before data.
	DefaultAddressSize = 1

	// MaxAddressSize is the widest sub-address this package encodes.
	MaxAddressSize = 2
)

// WriteCycleTime is the maximum self-timed write cycle (tWR) after a
// byte or page write. The chip does not acknowledge during this window.
const WriteCycleTime = 5 * time.Millisecond

// MaxByteValue is the largest value a single EEPROM cell can hold.
const MaxByteValue = 0xFF
