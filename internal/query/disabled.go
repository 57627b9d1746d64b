package query

import "errors"

// ErrDisabled is returned by queries whose inputs are not available yet,
// such as a data query without an authenticated session. No request is made.
var ErrDisabled = errors.New("query disabled")
