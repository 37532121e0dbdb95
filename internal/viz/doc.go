// Package viz draws a running world in the terminal.
//
//   - [Model]: bubbletea live view ticking a [sim.World] once per frame
//   - [Canvas]: braille dot canvas, 2x4 dots per cell
//   - [Camera]: top-down projection with yaw, tilt and zoom
//   - [Picker]: menu for choosing a scene
//
// # Key Bindings
//
//	Space - Pause/Resume the clock
//	< >   - Halve/double the time scale
//	+ -   - Zoom
//	F     - Follow the next body
//	R     - Rebuild the scene
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
