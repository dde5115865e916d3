// Package diagnostics attaches file diagnostics providers to a service
// registry, at most once per key.
//
// A [Key] is either the default (absent) key or an explicit prefix. Each
// successful [Builder.Attach] adds one provider descriptor to the registry,
// and one change-token source plus two filter configurators to the shared
// filter pipeline. Attaching a key that is already in the builder's ledger,
// or attaching on a host that is not the target environment, adds nothing
// and returns nil. A failed attach leaves no entries behind.
//
//	b := diagnostics.NewBuilder(src, host)
//	_ = b.AddConfiguration(src.Section("logging"))
//	_ = b.Attach(diagnostics.DefaultKey())
//	_ = b.Attach(diagnostics.PrefixKey("api"))
//
//	comp, err := b.Build()
//	if err != nil {
//	    return err
//	}
//	defer comp.Close()
//	comp.Factory.Logger("app.http").Warn("slow request")
//
// The default key is configured by the "diagnostics" section and writes
// <home>/LogFiles/Application/diagnostics.txt. Prefix p is configured by
// "diagnostics:prefixes:p" and writes p-diagnostics.txt. Prefixes match
// case-insensitively, as configuration sections do.
package diagnostics
