package ledgerapp

import "errors"

var ErrPropertyMismatch = errors.New("ledger: booking belongs to another property")
