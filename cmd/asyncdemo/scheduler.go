package main

import (
	"fmt"
	"slices"
	"time"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Demonstrate timer completion order and alertable sleeps",
	RunE:  runScheduler,
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := runCompletionOrder(cfg.Scheduler); err != nil {
		return err
	}
	return runAlertableCycle(cfg.Alertable)
}

func runCompletionOrder(cfg schedulerConfig) error {
	fmt.Println(header("Scheduler completion order"))
	fmt.Printf("Scheduling %d sleeps: %v ms\n", len(cfg.SleepsMS), cfg.SleepsMS)

	s := async.NewScheduler()
	defer s.Close()

	w := async.NewWaitEach(len(cfg.SleepsMS))
	for _, ms := range cfg.SleepsMS {
		async.WaitEachAdd(w, s.SleepFor(time.Duration(ms)*time.Millisecond, nil))
	}

	var labels []int
	for range cfg.SleepsMS {
		i, err := w.Next().Await()
		if err != nil {
			return err
		}
		labels = append(labels, i+1)
	}

	want := completionOrder(cfg.SleepsMS)
	fmt.Printf("completion order: %v, by deadline: %v  %s\n",
		labels, want, verdict(slices.Equal(labels, want)))
	return nil
}

// completionOrder returns 1-based labels sorted by their sleep durations.
func completionOrder(sleepsMS []int) []int {
	labels := make([]int, len(sleepsMS))
	for i := range labels {
		labels[i] = i + 1
	}
	slices.SortStableFunc(labels, func(a, b int) int {
		return sleepsMS[a-1] - sleepsMS[b-1]
	})
	return labels
}

func runAlertableCycle(cfg alertableConfig) error {
	fmt.Println(header("Alertable sleep cycle"))
	step := time.Duration(cfg.StepMS) * time.Millisecond
	alertAt := time.Duration(cfg.AlertAtMS) * time.Millisecond
	fmt.Printf("Task alternates alertable and regular %v sleeps; alert fires at %v.\n", step, alertAt)

	s := async.NewScheduler()
	defer s.Close()

	var flag async.AlertFlag
	h := async.Spawn(func() (int, error) {
		count := 0
		for {
			if _, err := s.SleepForAlertable(&flag, step).Await(); err != nil {
				return count, err
			}
			if flag.TestAndReset() {
				return count, nil
			}
			if _, err := s.SleepFor(step, nil).Await(); err != nil {
				return count, err
			}
			count++
		}
	})

	done := make(chan async.Unit)
	h.AttachCallback(func(*async.Handle[int]) { close(done) }).Resume()

	time.Sleep(alertAt)
	s.Alert(&flag)
	<-done

	count, err := h.TryValue()
	if err != nil {
		return err
	}
	want := int((alertAt + step) / (2 * step))
	fmt.Printf("completed cycles: %d, expected: %d  %s\n", count, want, verdict(count == want))
	return nil
}
