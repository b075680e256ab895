// Package topology provides the entity model of the spring farm.
//
// A [Configuration] is the editable description of a scene: an ordered list
// of [Atom] point masses and an ordered list of [Spring] connectors that
// reference atoms by id. [Resolve] validates a configuration and turns it into
// a [State], the numeric form the integrators work on, where every spring
// refers to its endpoints by dense index instead of id.
//
// # Ownership
//
// Configurations and states never share records. [Configuration.Clone] and
// [State.Clone] copy every atom and spring, and [Resolve] copies the atoms it
// is given, so stepping a state can never change the configuration it came
// from.
package topology
