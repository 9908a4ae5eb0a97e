// Command asyncdemo runs each of the library's coordination primitives
// through a small scripted scenario and reports what happened, so the
// ordering and cancellation behavior can be observed from a terminal
// instead of a test log.
package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asyncdemo",
	Short: "Scenario runner for the async primitives library",
	Long: `asyncdemo exercises each coordination primitive of the async
library against a scripted scenario: mutex fairness, scheduler completion
order, alertable sleeps, distributor broadcast and kick-out, generator
finiteness, bounded-queue backpressure, and error propagation.`,
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Border(lipgloss.RoundedBorder()).
	Padding(0, 2)

var (
	pass = color.New(color.FgGreen, color.Bold).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
)

func header(title string) string {
	return headerStyle.Render(title)
}

func verdict(ok bool) string {
	if ok {
		return pass("PASS")
	}
	return fail("FAIL")
}

func main() {
	rootCmd.PersistentFlags().String("config", "", "path to a TOML config file with scenario timings")

	rootCmd.AddCommand(mutexCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(distributorCmd)
	rootCmd.AddCommand(generatorCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(errorsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
