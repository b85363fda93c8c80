// Package audit records security-relevant account events such as logins,
// password changes and second-factor changes.
//
// A Logger fills request metadata from context through extractors and writes
// to a Storage. Storages exist for memory, Postgres and OpenSearch, and
// AsyncWriter batches writes in the background:
//
//	storage := audit.MultiStorage{audit.NewPostgresStorage(pool), audit.NewOpenSearchStorage(client, "auth-audit")}
//	writer, _ := audit.NewAsyncWriter(storage, audit.AsyncOptions{})
//	defer writer.Close(ctx)
//	log, _ := audit.NewLogger(writer, audit.WithRequestIDExtractor(requestid.Lookup))
//	_ = log.Log(ctx, "auth.login", audit.WithUserID(id))
package audit
