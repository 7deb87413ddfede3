// Package at24mac drives AT24MAC402/602 I2C EEPROMs.
//
// # Overview
//
// The chip holds a small user-writable EEPROM array plus a read-only
// factory block with a 128-bit serial number and a MAC address. A Device
// translates byte and range accesses into bus transactions:
//   - Get, GetRange: sub-address write then sequential read
//   - Set, SetRange: page-aligned writes, each followed by the write cycle
//   - MAC, SerialNumber: reads from the factory block
//
// # Basic Usage
//
//	bus := i2cdev.Open("/dev/i2c-1")
//	defer bus.Close()
//
//	dev, err := at24mac.New(bus)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mac, err := dev.MAC(ctx)
//	fmt.Println(mac) // fc:c2:3d:0d:2a:41
//
//	if err := dev.Set(ctx, 0, 76); err != nil {
//	    log.Fatal(err)
//	}
//	v, err := dev.Get(ctx, 0)
//
//	err = dev.SetRange(ctx, 100, []byte{6, 7, 8, 9, 10})
//	data, err := dev.GetRange(ctx, 100, 105)
//
// Device also implements io.ReaderAt and io.WriterAt, so the array can be
// used with io.NewSectionReader, io.Copy and friends.
//
// # Configuration Options
//
//	dev, err := at24mac.New(bus,
//	    at24mac.WithModel(protocol.ModelAT24MAC602),
//	    at24mac.WithAddressPins(0b101),
//	    at24mac.WithAckPolling(10*time.Millisecond),
//	    at24mac.WithMaxReadLength(32),
//	    at24mac.WithSkipUnchanged(true),
//	    at24mac.WithLogger(myLogger),
//	)
//
// # Write Cycle
//
// After every write transaction the chip is busy for up to 5 ms and does
// not acknowledge. By default the device sleeps for protocol.WriteCycleTime;
// WithAckPolling polls the chip instead. The next operation is never
// issued before the cycle ends.
//
// # Error Handling
//
// The package provides structured error types:
//   - ConfigurationError: invalid option passed to New
//   - DeviceNotFoundError: the chip did not answer the probe
//   - IndexError: index or range outside the array
//   - ValueError: value outside 0-255 passed to SetValues
//   - BusError: a bus transaction failed
//
// Errors are returned as they happen; the device never retries.
//
// # Concurrency
//
// A Device performs no locking. When several goroutines or devices share
// one bus, the Bus implementation must serialize transactions.
package at24mac
