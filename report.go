package lifecycle

import (
	"fmt"
	"io"
)

// Report writes one status line per outcome, in slice order, e.g.
//
//	Worker 0: ok: 2
//	Worker 1: failed: boom
//
// The line format is meant for humans and may change.
func Report[O fmt.Stringer](w io.Writer, outcomes []O) error {
	for _, o := range outcomes {
		if _, err := fmt.Fprintln(w, o.String()); err != nil {
			return err
		}
	}
	return nil
}
