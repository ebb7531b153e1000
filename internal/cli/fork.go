package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/lifecycle"
)

const forkRole = "fork-child"

func newForkCommand(a *app) *cobra.Command {
	var childExit int
	cmd := &cobra.Command{
		Use:   "fork",
		Short: "Re-execute this binary as a child and continue in both processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.fork(cmd, childExit)
		},
	}
	cmd.Flags().IntVar(&childExit, "child-exit", 0, "exit status of the child process")
	return cmd
}

func (a *app) fork(cmd *cobra.Command, childExit int) error {
	c, err := lifecycle.New[any, any](nil,
		lifecycle.WithLogger(a.log),
		lifecycle.WithProcessOutput(a.stdout, a.stderr),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	out, err := c.SpawnSelf(cmd.Context(), forkRole, "fork", "--child-exit", strconv.Itoa(childExit))
	if err != nil {
		return err
	}

	switch o := out.(type) {
	case lifecycle.Child:
		fmt.Fprintf(a.stdout, "child: running as %q in pid %d\n", o.Role, os.Getpid())
		if childExit != 0 {
			return &ExitError{Code: childExit}
		}
		return nil
	case lifecycle.Parent:
		r, err := o.Handle.Join()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "parent: pid %d joined %s\n", os.Getpid(), r)
		if r.Failed() {
			return ErrWorkersFailed
		}
		return nil
	default:
		return fmt.Errorf("unexpected spawn outcome %T", out)
	}
}
