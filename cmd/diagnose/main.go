// Command diagnose runs the breast cancer diagnosis workflow: load the CSV,
// split, balance, scale, fit a logistic regression, then write the
// evaluation report and the interpretation charts.
//
// Usage:
//
//	diagnose run --config pipeline.yaml
//	diagnose run --data data.csv --sampling adasyn --scaling minmax --output out/
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
