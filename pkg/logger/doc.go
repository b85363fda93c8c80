// Package logger builds log/slog loggers for the service.
//
// New applies functional options over a JSON/INFO default; FromConfig reads
// LOG_LEVEL, LOG_FORMAT, APP_ENV and APP_NAME through Config. Context extractors
// add request-scoped attributes (such as the request ID) at log time:
//
//	log := logger.FromConfig(cfg.Log,
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "login succeeded", logger.UserID(id), logger.Component("auth"))
//
// The attribute helpers keep key names consistent across packages; Email masks
// addresses so logs never carry them in full.
package logger
