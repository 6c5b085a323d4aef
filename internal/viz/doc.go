// Package viz renders a running engine in the terminal.
//
//   - [TermSurface]: a binding.Surface drawing one coloured glyph per instance
//   - [Model]: bubbletea program ticking the engine at the configured rate
//   - [FieldPreview]: shaded dump of a brightness field
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reload images
//	[ ]   - Select parameter
//	+ -   - Scale parameter by 10%
//	Q     - Quit
//
// Image slots load asynchronously; each load is a tea.Cmd wrapping a
// loader future, so the grid appears once every slot has arrived.
package viz
