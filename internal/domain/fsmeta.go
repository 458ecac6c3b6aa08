package domain

import "time"

// FsMeta is the per-file metadata the path walker (internal/fswalk) returns
// for every regular file it discovers under a root.
type FsMeta struct {
	Size    int64
	ModTime time.Time
}
