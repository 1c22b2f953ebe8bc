// Package anim provides a frame-driven animation sequencing engine.
//
// The package composes primitive operations over owned numeric cells:
//
//   - [Cell]: an owned animatable float64 with derived views
//   - [Scope]: the arena owning the cells of one component instance
//   - [Timing], [Spring], [Delay]: primitive operations
//   - [Sequence], [Parallel], [Stagger], [Loop]: composites
//   - [Engine]: the scheduler advancing every active operation per tick
//
// # Example
//
//	eng := anim.New()
//	scope := eng.NewScope()
//	opacity := scope.NewCell(0)
//	fade := opacity.Interpolate([]float64{0, 1}, []float64{0, 255})
//	opacity.Start(anim.Timing{To: 1, Duration: 200 * time.Millisecond}, nil)
//	eng.Settle(ctx, 16*time.Millisecond, time.Second)
//
// # Cancellation
//
// Starting an operation that touches a cell cancels the top-level operation
// currently claiming that cell. Cancelled operations never invoke their
// completion callback, and cells keep the value reached at the cancel instant.
// [Scope.Dispose] cancels everything touching the scope's cells.
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Drive them from a single goroutine;
// [Engine.Drive] accepts frames from any timer source and applies all
// mutations on the calling goroutine.
package anim
