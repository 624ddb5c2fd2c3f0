// Package resilience retries calls to collaborators that fail transiently,
// such as the trap a stream hands failed records to.
//
//	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func() error {
//	    return deadLetters.Publish(ctx, msg)
//	})
package resilience
