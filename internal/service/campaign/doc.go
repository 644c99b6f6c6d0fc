// Package campaign runs campaign sends.
//
// A run walks an ordered recipient list strictly sequentially. For each
// recipient it builds the personalised message, hands it to a Dispatcher,
// appends one entry to the campaign log and publishes a progress snapshot.
// A failed dispatch never aborts the run and is never retried.
//
// The Runner executes one run synchronously. The Service owns the single
// active run: it starts the Runner on its own goroutine, guards against
// concurrent runs with a distlock, and fans snapshots out to subscribers.
package campaign
