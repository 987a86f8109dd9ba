// Package interceptors provides the middleware pipeline for the mediator.
//
// Interceptors wrap request dispatch and notification publish with
// cross-cutting concerns without touching the application logic. The package
// provides:
//   - Interceptor interface and ordered Catalog with constraint matching
//   - Chain construction from a catalog and a terminal handler
//   - Built-in interceptors for common concerns
//
// Built-in interceptors:
//   - LoggingInterceptor: Logs message processing with timing information
//   - ValidationInterceptor: Validates messages and aborts the chain on failure
//   - StatisticsInterceptor: Feeds the statistics tracker per message and session
//   - RateLimitingInterceptor: Implements rate limiting per message type
//   - TimeoutInterceptor: Adds timeout handling to message processing
//   - RetryInterceptor: Retries failed handlers according to a policy
//
// A catalog entry carries a numeric order (OrderFirst and OrderLast sort at
// the extremes), an optional constraint over message types, and the
// interceptor itself. Ties are broken by registration order. After Finalize
// the catalog is read-only and pipelines built from it may be cached.
//
// Custom interceptors implement the Interceptor interface:
//
//	type CustomInterceptor struct {}
//
//	func (i *CustomInterceptor) Intercept(ctx context.Context, msg contracts.Message, next Handler) (interface{}, error) {
//		// Pre-processing logic
//		result, err := next.Handle(ctx, msg)
//		// Post-processing logic
//		return result, err
//	}
//
//	func (i *CustomInterceptor) Name() string {
//		return "CustomInterceptor"
//	}
package interceptors
