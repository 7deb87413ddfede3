// Package protocol implements the AT24MAC402/602 I2C addressing scheme.
//
// This package provides the chip constants, the EEPROM array geometry and
// the functions that build the bytes of each bus transaction. It performs
// no I/O.
//
// # Memory Map
//
// The chip answers on two 7-bit I2C addresses selected by the A2..A0 pins:
//
//	0x50|A2A1A0  EEPROM array, 256 bytes, 16-byte pages
//	0x58|A2A1A0  extended memory, read-only
//	               0x80  128-bit serial number (16 bytes)
//	               0x98  EUI-64 (AT24MAC602, 8 bytes)
//	               0x9A  EUI-48 (AT24MAC402, 6 bytes)
//
// # Transactions
//
// Every access starts with a write of the sub-address. A read follows it
// with a repeated start; a write appends the data to the same transaction:
//
//	Read:  W [ADDR...]  R [DATA...]
//	Write: W [ADDR...][DATA...]
//
// A write must stay inside one page. The chip wraps the address counter at
// the page boundary, so SplitPages splits longer writes before they reach
// the bus:
//
//	chunks := protocol.SplitPages(g, 10, data) // [10,16) [16,32) ...
//	for _, c := range chunks {
//	    frame, err := protocol.BuildWriteCmd(g, c.Offset, c.Data)
//	    // ...
//	}
//
// After each write the chip runs a self-timed write cycle of up to
// WriteCycleTime and does not acknowledge its address until it ends.
package protocol
