package cli

import (
	"github.com/spf13/cobra"

	"github.com/ygrebnov/lifecycle"
)

func newExecCommand(a *app) *cobra.Command {
	var count uint
	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command as concurrent child processes and report each exit status",
		Example: `  lifecycle exec -- sh -c "exit 7"
  lifecycle exec --count 4 -- sleep 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.exec(cmd, count, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().UintVar(&count, "count", 1, "number of child processes")
	return cmd
}

func (a *app) exec(cmd *cobra.Command, count uint, args []string) error {
	cc := a.cfg.Coordinator
	order, err := lifecycle.ParseOrder(cc.Order)
	if err != nil {
		return err
	}
	opts := append(cc.Options(),
		lifecycle.WithLogger(a.log),
		lifecycle.WithProcessOutput(a.stdout, a.stderr),
	)

	c, err := lifecycle.New[any, any](nil, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	handles := make([]*lifecycle.Handle[lifecycle.ProcessResult], 0, count)
	for range count {
		h, err := c.RunChildProcess(ctx, args[0], args[1:]...)
		if err != nil {
			// already started processes are still awaited by Close
			return err
		}
		handles = append(handles, h)
	}

	joinCtx, cancel := joinContext(ctx, cc.JoinTimeout)
	defer cancel()
	results, err := lifecycle.JoinAll(joinCtx, handles, order, joinOptions(cc.SequentialJoin)...)
	if rerr := lifecycle.Report(a.stdout, results); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}
	if failedCount(results) > 0 {
		return ErrWorkersFailed
	}
	return nil
}

func joinOptions(sequential bool) []lifecycle.JoinOption {
	if sequential {
		return []lifecycle.JoinOption{lifecycle.Sequentially()}
	}
	return nil
}
