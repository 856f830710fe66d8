// Package httpclient builds the HTTP requests and client used to execute tasks.
//
// Every request carries the fixed header set from [DefaultHeaders]
// (Content-Type: application/json). A body is attached only to POST requests:
//
//	headers, err := httpclient.CanonicalHeaders(httpclient.DefaultHeaders())
//	req, err := httpclient.NewRequest(ctx, "POST", "http://example.com", `{"a":1}`, headers)
//
// [NewClient] returns a client with default transport settings; connection
// reuse is left to net/http.
package httpclient
