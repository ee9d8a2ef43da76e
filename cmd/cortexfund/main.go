// Command cortexfund drives the analyst DAG either as one streaming run or
// as a day-by-day historical backtest.
package main

import (
	"os"

	"github.com/dyike/cortexfund/internal/cli"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		cli.DisplayError(err)
		os.Exit(1)
	}
}
