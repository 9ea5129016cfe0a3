// Package guardian provides a Go client SDK for the Guardian
// text-threat-analysis API.
//
// The client resolves its configuration once at construction (explicit
// settings, then GUARDIAN_API_KEY / GUARDIAN_BASE_URL environment
// fallbacks, then defaults), keeps a pooled HTTP transport, and retries
// transient failures with exponential backoff and jitter. Server
// rate-limit hints (Retry-After) override the local schedule. Every
// failure resolves to exactly one typed *Error whose Kind callers can
// switch on.
//
// Basic usage:
//
//	client, err := guardian.New("your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Analyze(ctx, "Click here to win a prize!")
//	if err != nil {
//	    var gerr *guardian.Error
//	    if errors.As(err, &gerr) && gerr.Kind == guardian.KindRateLimit {
//	        // back off for gerr.RetryAfter
//	    }
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Risk score:", result.RiskScore)
//
// A Client is safe for concurrent use and intended to be long-lived so
// connection pooling amortizes handshake cost across calls.
package guardian
