// Package viz renders needle runs in the terminal.
//
//   - [Replay]: Bubble Tea player that swings a Braille compass dial through
//     a stored run
//   - [Canvas]: Braille pixel canvas the dial is drawn on
//   - [RenderReport]: styled summary of an experiment
//
// # Key Bindings
//
//	Space - Pause/Resume
//	[ ]   - Step back/forward one sample
//	+ -   - Playback speed
//	R     - Restart
//	T     - Cycle color themes
//	Q     - Quit
package viz
