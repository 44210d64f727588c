// Package dynamic runs the rapidity and stability tests of a compass.
//
// An [Engine] derives the needle equation coefficients from a
// [compass.Compass] and a [compass.Field], integrates the needle equation
// through [dynamo.Simulator], and extracts the test results:
//
//   - Rapidity: the needle starts deflected and settles towards north.
//     [Engine.Tho] is the last time the deflection crosses the settling
//     limit.
//   - Stability: the needle starts at rest and is shaken by the runner's
//     gait. [Engine.StabAmp] is the peak to peak swing over the second half
//     of the run.
//
// Each test has a small angle variant used to compare against the closed
// form steady state response ([Engine.Response]). Nonlinear runs are stored
// in degrees, small angle runs in radians.
//
// The engine reads the compass and field on every call, so edits to a
// shared compass are picked up by the next run. An engine is not safe for
// concurrent use; build one per goroutine.
package dynamic
