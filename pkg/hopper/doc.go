// Package hopper reports application errors to an error-tracking
// collector. It assembles an exception and its request context into a
// sanitized notice: nested data is normalized to JSON-safe values with
// cycle protection, and sensitive fields are redacted by key name before
// anything leaves the process.
//
// Quick start:
//
//	notifier, err := hopper.New(
//	    hopper.WithAPIKey("your-project-key"),
//	    hopper.WithEnvironment("production"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer notifier.Close()
//
//	if err := doWork(); err != nil {
//	    notifier.Notify(err, hopper.WithParams(map[string]any{"job": "sync"}))
//	}
//
// The Notifier is safe for concurrent use. Create once, reuse across
// requests.
package hopper
