// Package api is the HTTP client for the Parcelvoy client API
// (`<endpoint>/api/client/`).
//
// Requests are made through three generic functions that decode the
// response into the requested type:
//
//	page, err := api.Get[api.Page[content.Notification]](ctx, c, "notifications", user)
//	_, err := api.Post[api.Empty](ctx, c, "events", batch)
//	_, err := api.Put[api.Empty](ctx, c, "notifications/42", user)
//
// Every request carries `Authorization: Bearer <api key>` and JSON content
// headers. Get is user-scoped and sends `x-anonymous-id` and
// `x-external-id`; it refuses to run without an external id unless
// AllowAnonymous is given. WithAbsoluteURL treats the path as a complete URL,
// which is how click-tracking links are followed.
//
// # Outcomes
//
// Only statuses 200 through 298 are successful. Everything else is
// classified into the error taxonomy:
//
//   - ErrTransport: the request never produced a response (dial, TLS, timeout)
//   - *StatusError (matches ErrHTTPStatus): the server answered with another status
//   - ErrDecode: the body did not match the requested type
//   - ErrPrecondition: a user-scoped call was made without an external id
//
// Decoding into Empty never touches the JSON decoder, so endpoints that
// answer with no body (or an arbitrary body) are fine.
//
// Wire field names are lower_case_with_underscores. With Config.Debug set,
// request and response bodies are logged at debug level.
package api
