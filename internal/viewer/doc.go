// Package viewer coordinates viewport slots for a multi-viewport image
// viewer: binding a series to a viewport, tracking its async image load,
// arbitrating which viewport is active, and keeping the mutually exclusive
// prefetch / reference-line behaviors consistent. It is structured into
// small files by concern:
//
//   - coordinator.go: core Coordinator type, constructor, lifecycle.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Viewport, Image).
//   - collaborators.go: interfaces for the fetch service, render surfaces,
//     synchronizers, and the prefetch engine.
//   - errors.go: error types and helpers (IsStudyNotFound, IsFetchFailed, ...).
//   - bind.go: Bind/load lifecycle and fetch completion handling.
//   - unbind.go: viewport teardown.
//   - activation.go: Activate and the single-active invariant.
//   - arbiter.go: prefetch / reference-line arbitration.
//   - progress.go: the in-flight progress registry and broadcast routing.
//   - persistence.go: the persistence bridge contract and in-memory bridge.
//   - surface.go: in-process render surface hub.
//   - fetcher.go: HTTP image fetcher.
//   - prefetch.go: LRU-cached stack prefetch engine.
//   - reflines.go: reference-line synchronizer bookkeeping.
//   - status.go: Status reporting for /status.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Bind, Unbind, Activate,
// RouteProgress, Status, Reset, Close). Internal types are subject to change.
package viewer
