// Package logger builds the *slog.Logger used across the SDK and provides
// attribute helpers that keep key names consistent between components.
//
// New returns a logger configured by functional options. Context values
// registered with WithContextValue (the in-app pipeline cycle id, for one)
// are added to every record logged with that context.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDebug(cfg.Debug),
//	    logger.WithAttr(logger.Component("parcelvoy")),
//	    logger.WithContextValue("cycle_id", cycleKey{}),
//	)
//
//	log.InfoContext(ctx, "notification consumed",
//	    logger.NotificationID(n.ID),
//	    logger.Error(err),
//	)
//
// Error and the identity helpers return an empty slog.Attr for nil or empty
// input, which slog drops, so callers do not need nil checks.
package logger
