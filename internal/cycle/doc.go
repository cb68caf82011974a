// Package cycle holds the pure arithmetic of coking-cycle derivation:
// parsing operator timestamps, interpolating a reading between two samples,
// integrating a time-weighted average and rendering durations.
//
// Nothing here touches storage; the service layer feeds it samples.
package cycle
