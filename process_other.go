//go:build !unix

package lifecycle

import "os"

func isTransientStartError(error) bool { return false }

func exitSignal(*os.ProcessState) (string, bool) { return "", false }
