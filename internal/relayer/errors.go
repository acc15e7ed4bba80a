package relayer

import "errors"

// ErrChainMismatch is returned when the node's chain shares no header with
// the relay down to the relay's anchor.
var ErrChainMismatch = errors.New("node chain does not reach relay anchor")
