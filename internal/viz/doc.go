// Package viz is the terminal preview of preset scenes, built on Bubble Tea.
//
// A [Model] drives one scene instance from wall-clock frames and draws each
// cell as a bar with a short history. A cell named "rotation" is also drawn
// as an indeterminate ring on a braille [Canvas]. Finished scenes replay
// after a short hold; infinite ones run until the preview exits.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the scene
//	N/P   - Next/previous scene
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
//
// When the model is given a channel of tables (see config.Watch), every
// table received rebuilds the preset library and restarts the scene.
package viz
