// Package wifi implements the WiFi connectivity manager: radio mode
// coordination, the station connection lifecycle and a non-blocking network
// scan facility.
//
// The package owns a single Manager instance per radio. The Manager tracks
// the current radio mode (off, station, access point or both), reacts to
// asynchronous driver events, and coalesces concurrent scan requests into at
// most one in-flight hardware scan whose single result is fanned out to every
// requester.
//
// # Radio drivers
//
// The Manager drives the hardware through the Radio interface. Drivers report
// ErrNotInitialized and ErrNotStarted so the Manager can lazily initialize
// and start the radio on first use; any other error is surfaced to the
// caller. Drivers deliver asynchronous events by calling
// Manager.HandleEvent, from any goroutine.
//
// # Locking
//
// All shared state is guarded by one mutex. Public entry points lock once and
// call unexported ...Locked functions; the locked core never takes the lock
// again, so no reentrant locking is needed even though mode transitions are
// reached both directly and from within station or scan sequences.
//
// # Callbacks
//
// Connectivity notifications and scan results are never invoked from the
// event-producing goroutine. They are marshaled onto a single dispatcher
// goroutine, in submission order, so application callbacks can call back into
// the Manager without deadlocking.
package wifi
