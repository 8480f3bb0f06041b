package types

// ProgressFunc receives transfer progress as (units done, unit size, total size in bytes).
// total is negative when the size is unknown.
type ProgressFunc func(done, unitSize, total int64)
