package protocol

import (
	"fmt"
	"net"
)

// ParseMACResponse validates the bytes read from the MAC location and
// returns them as a hardware address.
//
// Response format:
//
//	EUI-48: [OUI(3)][NIC(3)]
//	EUI-64: [OUI(3)][EXT(5)]
func ParseMACResponse(m Model, data []byte) (net.HardwareAddr, error) {
	if len(data) != m.MACLength() {
		return nil, fmt.Errorf("invalid MAC response length: got %d bytes, expected %d", len(data), m.MACLength())
	}

	mac := make(net.HardwareAddr, len(data))
	copy(mac, data)
	return mac, nil
}

// ParseSerialResponse validates the bytes read from the serial number location.
//
// Response format:
//
//	[SERIAL(16)] most significant byte first
func ParseSerialResponse(data []byte) (Serial, error) {
	var s Serial
	if len(data) != SerialNumberLength {
		return s, fmt.Errorf("invalid serial response length: got %d bytes, expected %d", len(data), SerialNumberLength)
	}

	copy(s[:], data)
	return s, nil
}
