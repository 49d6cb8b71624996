// Package viz hosts the line-field renderer in a terminal.
//
// Each terminal cell covers 8x16 logical pixels of the surface and shows two
// vertically stacked samples with the upper half block, so a 80x24 terminal
// drives a 640x368 surface. The overlay title and subtitle are centered on
// top of the animation.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	S     - Save a PNG snapshot
//	?     - Show help overlay
//	Q     - Quit
//
// # Recording
//
// Recordings and snapshots are written to the output directory, the current
// directory by default.
package viz
