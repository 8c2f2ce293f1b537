package dynfilter

import "errors"

// ErrQueryNotFound means a queryId has no registered context (already
// removed, or dynamic filtering was never enabled for it). stats.For
// returns it directly; Factory.New treats the same condition as
// "filtering disabled" and returns an empty sentinel instead.
var ErrQueryNotFound = errors.New("dynfilter: query not found")

// ErrUnknownSymbol means a descriptor's symbol was not present in the
// symbol-to-column map passed to Factory.New: the plan and the scan
// disagree about what this scan can filter on.
var ErrUnknownSymbol = errors.New("dynfilter: descriptor symbol not bound to a column")
