package domain

// FilterId is the opaque, equatable, hashable token assigned to one dynamic
// filter at planning time.
type FilterId string
