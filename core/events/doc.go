// Package events defines the distribution related events emitted on the event bus.
//
// Available event types:
//   - RunStartedEvent: a distribution run began
//   - ConflictEvent: a reviewer was excluded from a submission
//   - FallbackEvent: an assignment was made outside the primary strategy
//   - ShortfallEvent: a submission ended below its reviewer quota
//   - RunCompletedEvent: a run was finalized
package events
