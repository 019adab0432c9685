// Package worker isolates a codec behind a message protocol so that a
// misbehaving codec cannot stall or corrupt the calling pipeline.
//
// A Session owns one codec on one goroutine and processes typed
// messages strictly in arrival order through a small state machine:
// Uninitialized moves through Initializing to Ready or Failed on init,
// and destroy returns any state to Uninitialized. Requests that need a
// codec are rejected with an error response while none exists.
//
// A Client layers request correlation on top. Every request carries a
// unique ID, waits on its own channel, and is bounded by a deadline;
// responses are matched to requests by ID alone, never by arrival
// position, so concurrent callers can share one session safely. Errors
// cross the session boundary as strings and the client re-attaches the
// codec package's error kinds.
//
// Provider packages the whole arrangement as a codec registry tier:
// constructing it starts a session, initializes the codec inside, and
// hands back an ordinary synchronous codec facade.
package worker
