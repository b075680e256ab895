// Package sim is the simulation engine of the spring farm.
//
// A [Simulator] holds the authoritative [topology.Configuration] and a live
// [topology.State] derived from it. Hosts drive it with two calls:
//
//	s, _ := sim.New(cfg)
//	for range ticker.C {
//	    s.Step()
//	}
//
// and edit it with read-modify-reset cycles: [Simulator.Configuration]
// returns a private copy, and [Simulator.ResetTo] validates a changed copy
// and restarts the simulation from it. The editing helpers ([Simulator.AddAtom],
// [Simulator.RemoveAtom], [Simulator.Connect], ...) do exactly that under one
// lock.
//
// # Thread Safety
//
// All methods lock the simulator. [Simulator.State] hands out the live state
// without copying; use [Simulator.Snapshot] when another goroutine may step
// the simulator while you read.
package sim
