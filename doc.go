// Package parcelvoy is a client SDK for the Parcelvoy customer engagement
// platform.
//
// A Client is an explicit handle: construct it once, pass it to the code
// that needs it and close it on shutdown. There is no package-level state.
//
//	cfg, err := config.New(apiKey, "https://parcelvoy.example.com")
//	if err != nil {
//		return err
//	}
//	pv, err := parcelvoy.New(cfg,
//		parcelvoy.WithStore(storage.NewFileStore(statePath)),
//		parcelvoy.WithDelegate(inapp.Delegate{OnNew: inapp.AlwaysShow}),
//	)
//	if err != nil {
//		return err
//	}
//	defer pv.Close(context.Background())
//
//	_ = pv.IdentifyUser(ctx, "user-42", "jane@example.com", "", map[string]any{"plan": "pro"})
//	_ = pv.Track(ctx, "Checkout Completed", map[string]any{"total": 42.5})
//
// Network calls run on a background queue; the methods above return as soon
// as the request is submitted. Flush waits for everything submitted so far.
//
// The SDK works against four collaborators the host provides or accepts
// defaults for: an *http.Client, a storage.Store for the anonymous and
// device ids, an inapp.Target that presents notifications, and optional
// inapp.Delegate hooks deciding what to do with each notification.
package parcelvoy
