package main

import (
	"errors"
	"fmt"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
)

var distributorCmd = &cobra.Command{
	Use:   "distributor",
	Short: "Demonstrate broadcast fan-out, kick-out, and alerts",
	RunE:  runDistributor,
}

func runDistributor(cmd *cobra.Command, args []string) error {
	fmt.Println(header("Distributor broadcast"))

	var d async.Distributor[int]
	var flagD, flagE async.AlertFlag

	returns := 0
	subscribe := func(name string, ident any) {
		var h *async.Handle[int]
		if flag, ok := ident.(*async.AlertFlag); ok {
			h = d.RegisterAlertable(flag)
		} else {
			h = d.Register(ident)
		}
		h.AttachCallback(func(h *async.Handle[int]) {
			v, err := h.TryValue()
			switch {
			case errors.Is(err, async.ErrCanceled):
				fmt.Printf("  %s: canceled\n", name)
			case err != nil:
				fmt.Printf("  %s: error: %v\n", name, err)
			default:
				fmt.Printf("  %s: received %d\n", name, v)
				returns++
			}
		}).Resume()
	}

	fmt.Println("Round 1: A, B, C, D, E subscribe; E is alerted away, then broadcast 10.")
	subscribe("A", "A")
	subscribe("B", "B")
	subscribe("C", "C")
	subscribe("D", &flagD)
	subscribe("E", &flagE)
	d.Alert(&flagE).Resume()
	d.Broadcast(10)

	fmt.Println("Round 2: survivors re-subscribe (E's registration is refused), broadcast 20.")
	subscribe("A", "A")
	subscribe("B", "B")
	subscribe("C", "C")
	subscribe("D", &flagD)
	subscribe("E", &flagE)
	d.Broadcast(20)

	fmt.Println("Round 3: B is kicked out, D is alerted, broadcast 30.")
	subscribe("A", "A")
	subscribe("B", "B")
	subscribe("C", "C")
	subscribe("D", &flagD)
	d.KickOut("B", func(rc async.ResultChannel[int]) *async.PreparedTask {
		return rc.Drop()
	}).Resume()
	d.Alert(&flagD).Resume()
	d.Broadcast(30)

	fmt.Println("Round 4: A and C remain, broadcast 40.")
	subscribe("A", "A")
	subscribe("C", "C")
	d.Broadcast(40)

	const want = 12
	fmt.Printf("total delivered values: %d, expected: %d  %s\n", returns, want, verdict(returns == want))
	return nil
}
