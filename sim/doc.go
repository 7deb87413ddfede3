// Package sim provides a simulated AT24MAC402/602 chip.
//
// A Chip behaves like the real part seen from the bus: it answers on the
// array and extended-memory addresses, wraps page writes, stays busy for
// the write cycle and refuses writes to the factory data. It records every
// transaction so tests can assert on the exact bus traffic.
//
//	chip := sim.New(sim.WithGeometry(protocol.Geometry{Size: 2048, PageSize: 16, AddressSize: 2}))
//	dev, err := at24mac.New(chip,
//	    at24mac.WithGeometry(chip.Geometry()),
//	    at24mac.WithWriteCycle(0),
//	)
//
// # Fault Injection
//
// InjectFault installs a FaultFunc consulted before each transaction:
//
//	chip.InjectFault(sim.FailNth(1, nil)) // second transaction fails with ErrInjected
package sim
