// Package runner drives a batch of HTTP requests from submission to a
// completed (or stopped) result log.
//
// A [Controller] owns at most one run at a time. [Controller.Start] cleans
// the URL list, builds one task per URL and hands every task to a bounded
// [pool.Pool]. A single reconciliation goroutine then wakes on a short
// ticker, or whenever the pool signals a completion, and moves finished
// outcomes into the run's ordered result log:
//
//	ctrl := runner.NewController(runner.Options{
//		Executor: task.NewExecutor(httpclient.NewClient(10 * time.Second)),
//		Logger:   logger,
//	})
//	runID, err := ctrl.Start(urls, runner.RunConfig{
//		Method:      "GET",
//		Concurrency: 5,
//		Timeout:     10 * time.Second,
//	})
//	...
//	_ = ctrl.Wait(ctx)
//	outcomes := ctrl.Outcomes()
//
// # States
//
// A controller moves Idle -> Running -> Stopped or Completed, and back to
// Running on the next Start. Start while Running fails with
// [*ConcurrentRunError]; bad input fails with [*ValidationError] and leaves
// the state untouched.
//
// # Cancellation
//
// [Controller.Stop] is cooperative. Tasks not yet started are dropped,
// calls already in flight run until they finish or time out, and their
// outcomes are never read. Outcomes captured before Stop are kept.
//
// # Progress
//
// [Report] derives a [Progress] value from a [Snapshot]. The default
// [ProgressModeRun] counts against the whole run; [ProgressModePass] reports
// only what the latest reconciliation pass drained.
package runner
