// Package analysis post-processes needle trajectories.
//
//   - [Spectrum] and [DominantFrequency]: frequency content of a run
//   - [PortraitOf] and [Stroboscopic]: (angle, rate) phase plane views
//   - [FrequencyResponse]: stability amplitude swept over step frequency,
//     side by side with the small-angle prediction
//
// A stability run driven at f steps/min should show its dominant line at
// f/30 Hz once the transient has died out:
//
//	hz, err := analysis.DominantFrequency(run.Angles(), params.SampleInterval)
package analysis
