// Package apitest provides an in-process fake of the Parcelvoy client API
// for tests.
//
// The server records every request, serves a mutable backlog of in-app
// notifications (consumed ones disappear from later listings), and can be
// told to fail specific routes a number of times:
//
//	srv := apitest.New(t)
//	srv.AddNotification(1, `{"id":1,"content_type":"banner","content":{"title":"t","body":"b"}}`)
//	srv.Fail(http.MethodPost, "/api/client/events", http.StatusInternalServerError, 2)
//
//	cfg := srv.Config(t)
//	...
//	assert.Equal(t, 3, srv.Count(http.MethodPost, "/api/client/events"))
package apitest
