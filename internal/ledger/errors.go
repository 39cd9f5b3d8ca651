package ledger

import "errors"

// ErrStoreUnavailable indicates the backing store could not be read or
// written. Callers in the conversion pipeline log it and keep going; the
// ledger never blocks delivery of a finished conversion.
var ErrStoreUnavailable = errors.New("ledger store unavailable")
