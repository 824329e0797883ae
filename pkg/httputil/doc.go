// Package httputil provides retry helpers for remote asset fetches.
//
// [Retry] re-runs a fetch under a [Policy] when it fails with a
// [RetryableError]. Connection errors, short reads and 5xx or 429 responses
// are transient; a 404 or a malformed body surfaces immediately:
//
//	err := httputil.Retry(ctx, httputil.Policy{Attempts: 3}, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Transient(err, "GET %s", url)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode, url)
//	})
package httputil
