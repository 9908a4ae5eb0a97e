package main

import (
	"errors"
	"fmt"

	async "github.com/b97tsk/asynchandle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Demonstrate error propagation and the detached-task hook",
	RunE:  runErrors,
}

func runErrors(cmd *cobra.Command, args []string) error {
	fmt.Println(header("Error propagation"))

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Println("An attached consumer observes a task's error directly.")
	myErr := errors.New("task failed on purpose")
	_, got := async.Spawn(func() (int, error) {
		return 0, myErr
	}).Await()
	fmt.Printf("consumer observed: %v  %s\n", got, verdict(errors.Is(got, myErr)))

	fmt.Println("A detached task's error goes to the process-wide hook instead.")
	hooked := make(chan error, 1)
	async.SetErrorHook(func(err error) {
		logger.Error("detached task failed", zap.Error(err))
		hooked <- err
	})
	defer async.SetErrorHook(nil)

	h := async.Spawn(func() (int, error) {
		return 0, myErr
	})
	h.Detach()

	hookErr := <-hooked
	fmt.Printf("hook observed: %v  %s\n", hookErr, verdict(errors.Is(hookErr, myErr)))
	return nil
}
