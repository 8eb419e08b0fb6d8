package tradestats

import "errors"

// ErrInconsistentEvents is returned when a trade's events reference an
// instrument without usable metadata (missing instrument or zero
// multiplier). The computation for that trade cannot proceed.
var ErrInconsistentEvents = errors.New("inconsistent trade events")
