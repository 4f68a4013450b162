// Package elnk provides a client for the elnk.pro link-shortening API.
//
// The client is a thin typed layer over the REST endpoints: it attaches the
// bearer token, encodes JSON bodies, decodes the "data" member of responses
// and turns failures into structured errors.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := elnk.NewClient(elnk.Config{APIKey: "your-api-key"}, logger,
//		elnk.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	short, err := client.CreateShortURL(ctx, "https://example.com/a/long/path", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(short.ShortURL)
//
// # Error Handling
//
// Every failure belongs to one of three kinds:
//
//   - *APIError: the server answered with a non-2xx status
//   - *TransportError: the request was sent but no response arrived
//   - ErrInvalidArgument and other local errors: the request was never sent
//
// Missing required arguments always fail with ErrInvalidArgument before any
// network activity. StatusCode and IsRetryable classify an error, and
// NewResult folds a (value, error) pair into the uniform Result envelope:
//
//	res := elnk.NewResult(client.GetLink(ctx, "42"))
//	if !res.Success {
//		fmt.Println(res.Message, res.StatusCode)
//	}
//
// # Bulk Operations
//
// CreateBulkShortURLs and BulkDeleteLinks issue independent requests
// concurrently (see WithConcurrency) and report per-item outcomes in a
// BulkResult. Only CreateShortURLWithRetry retries.
package elnk
