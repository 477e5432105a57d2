package main

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/gopool/pkg/metrics"
	"github.com/vnykmshr/gopool/pkg/scheduling/workerpool"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch of demo tasks and report which workers ran them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTasks(cmd.OutOrStdout(), a.config.Workers, a.config.Tasks)
		},
	}

	cmd.Flags().Int("workers", 4, "Number of workers")
	cmd.Flags().Int("tasks", 8, "Number of tasks to submit")
	return cmd
}

// runTasks submits n tasks to a pool of the given size, waits for all of
// them through Shutdown and prints a per-worker summary.
func (a *app) runTasks(out io.Writer, workers, n int) error {
	var mu sync.Mutex
	perWorker := make(map[int]int)

	pool, err := workerpool.NewWithConfigAndMetrics(workerpool.Config{
		WorkerCount: workers,
		Name:        "run",
		Logger:      a.logger,
		OnTaskStart: func(workerID int) {
			mu.Lock()
			perWorker[workerID]++
			mu.Unlock()
		},
	}, "run", metrics.Config{Enabled: true, Registry: a.promRegistry})
	if err != nil {
		return err
	}

	var outMu sync.Mutex
	for i := 0; i < n; i++ {
		i := i
		err := pool.SubmitFunc(func() {
			outMu.Lock()
			defer outMu.Unlock()
			fmt.Fprintf(out, "Task %d running\n", i)
		})
		if err != nil {
			pool.Shutdown()
			return err
		}
	}

	pool.Shutdown()

	ids := make([]int, 0, len(perWorker))
	for id := range perWorker {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Fprintf(out, "%d tasks completed by %d of %d workers\n", pool.TotalCompleted(), len(ids), pool.Size())
	for _, id := range ids {
		fmt.Fprintf(out, "worker %d: %d tasks\n", id, perWorker[id])
	}
	return nil
}
