// Package logging provides the structured logging used by webdiag itself and
// the file providers that diagnostics registrations attach.
//
// # Tool Logging
//
// [Logger] wraps log/slog with JSON output and persistent attributes:
//
//	logger, err := logging.NewLogger("/var/log/webdiag", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithKey("api").Info("diagnostics attached", "provider", "diagnostics:api")
//
// A nil *Logger discards everything, so components can hold an optional
// logger without checking it.
//
// # Providers
//
// A [FileProvider] writes every record it receives to a rolling JSON file,
// batching writes when a flush period is set. A [Factory] fans records out to
// its providers, consulting the current filter options for each provider and
// category before handing the record over:
//
//	f := logging.NewFactory(monitor, provider)
//	f.Logger("app.http").Warn("slow request", "ms", 1200)
//
// # Rotation
//
// [RotatingWriter] rolls the active file over to path.1, path.2, ... once it
// reaches its size limit, optionally gzip compressing the rolled copies.
//
// # Reading Logs
//
// [ReadEntries] loads the active file and its rolled copies, [FilterEntries]
// narrows them by level, category, time and message, and [ExportEntries]
// writes them out as JSON, text or CSV.
package logging
