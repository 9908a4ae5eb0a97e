package main

import (
	"fmt"
	"slices"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
)

var mutexCmd = &cobra.Command{
	Use:   "mutex",
	Short: "Demonstrate FIFO ownership transfer through the async mutex",
	RunE:  runMutex,
}

func runMutex(cmd *cobra.Command, args []string) error {
	fmt.Println(header("Mutex fairness"))
	fmt.Println("Holding the mutex, queueing three async acquisitions, releasing.")

	var m async.Mutex

	own, ok := m.TryLock()
	if !ok {
		return fmt.Errorf("fresh mutex refused TryLock")
	}

	var order []int
	for i := 1; i <= 3; i++ {
		m.Lock().AttachCallback(func(h *async.Handle[async.Ownership]) {
			own, err := h.TryValue()
			if err != nil {
				fmt.Println("acquisition failed:", err)
				return
			}
			order = append(order, i)
			own.Unlock()
		}).Resume()
	}
	own.Unlock()

	want := []int{1, 2, 3}
	fmt.Printf("resume order: %v  %s\n", order, verdict(slices.Equal(order, want)))
	return nil
}
