package main

import (
	"errors"
	"fmt"
	"slices"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
)

var generatorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Demonstrate generator finiteness with a Fibonacci sequence",
	RunE:  runGenerator,
}

func runGenerator(cmd *cobra.Command, args []string) error {
	fmt.Println(header("Generator finiteness"))
	fmt.Println("A generator yields ten Fibonacci numbers, then reports exhaustion.")

	g := async.NewGenerator(func(y *async.Yield[int, async.Unit]) error {
		a, b := 1, 1
		for i := 0; i < 10; i++ {
			if _, err := y.Send(a); err != nil {
				return err
			}
			a, b = b, a+b
		}
		return nil
	})

	var got []int
	for v, err := range g.All() {
		if err != nil {
			return err
		}
		got = append(got, v)
	}

	_, err := g.Invoke(async.Unit{}).Await()
	exhausted := errors.Is(err, async.ErrCanceled)

	want := []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	fmt.Printf("yielded: %v  %s\n", got, verdict(slices.Equal(got, want)))
	fmt.Printf("11th invocation canceled: %v  %s\n", exhausted, verdict(exhausted))
	return nil
}
