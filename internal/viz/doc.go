// Package viz hosts a simulation in the terminal.
//
// [Model] is a Bubble Tea program that steps a [sim.Simulator] on a fixed
// tick while playing and draws it on a braille [Canvas]:
//
//   - atoms are discs in their scene color, sized by mass
//   - springs are lines; the selected atom and spring are highlighted
//   - the side panel shows frame, energy and an energy graph
//
// The menu from [RunInteractive] picks a preset first.
//
// # Key Bindings
//
//	Space - Play/Pause
//	N     - Single step while paused
//	R     - Stop and reset to frame 0
//	A     - Add atom at the cursor
//	C     - Pick spring endpoints
//	X/D   - Delete selected atom/spring
//	?     - Show all keys
//
// Every edit goes through the simulator's editing helpers and therefore
// restarts the simulation from the edited configuration.
//
// # Recording
//
// G toggles GIF recording of the canvas; W writes the current scene as SVG.
package viz
