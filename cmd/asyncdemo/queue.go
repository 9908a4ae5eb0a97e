package main

import (
	"fmt"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Demonstrate bounded-queue backpressure under concurrent load",
	RunE:  runQueue,
}

func runQueue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	qc := cfg.Queue

	fmt.Println(header("Bounded queue"))
	fmt.Printf("%d producers push %d values each through a buffer of %d; %d consumers drain it.\n",
		qc.Producers, qc.Items, qc.Capacity, qc.Producers)

	q := async.NewBoundedQueue[int](qc.Capacity)

	var g errgroup.Group
	for p := 0; p < qc.Producers; p++ {
		g.Go(func() error {
			for i := 0; i < qc.Items; i++ {
				if _, err := q.Push(p*qc.Items + i).Await(); err != nil {
					return fmt.Errorf("push: %w", err)
				}
			}
			return nil
		})
	}

	results := make(chan int, qc.Producers*qc.Items)
	for c := 0; c < qc.Producers; c++ {
		g.Go(func() error {
			for i := 0; i < qc.Items; i++ {
				v, err := q.Pop().Await()
				if err != nil {
					return fmt.Errorf("pop: %w", err)
				}
				results <- v
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	close(results)

	seen := make(map[int]bool)
	dupes := 0
	for v := range results {
		if seen[v] {
			dupes++
		}
		seen[v] = true
	}

	total := qc.Producers * qc.Items
	ok := len(seen) == total && dupes == 0 && q.Len() == 0
	fmt.Printf("values delivered: %d/%d, duplicates: %d, left buffered: %d  %s\n",
		len(seen), total, dupes, q.Len(), verdict(ok))
	return nil
}
