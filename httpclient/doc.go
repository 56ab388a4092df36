// Package httpclient is the outbound HTTP client used by transcription
// providers. It resolves paths against a base URL, applies default headers
// and auth, encodes JSON and multipart bodies, and classifies non-2xx
// responses into *Error values.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 5 * time.Minute,
//	})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/audio/transcriptions",
//	    Auth:   httpclient.BearerAuth(key),
//	    Body:   &httpclient.MultipartBody{...},
//	})
//
// Requests are sent once. Retrying is left to callers.
package httpclient
