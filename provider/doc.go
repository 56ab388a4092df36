// Package provider holds swappable backends behind a generic registry.
//
// Backends register a Factory by name; a Manager instantiates the ones that
// are configured and hands them out by name, by a default, or through a
// Selector. RequestResponse backends can be wrapped with Middleware for
// logging, metrics and tracing:
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("openai", openai.Factory())
//	mgr := provider.NewManager(reg, &provider.PrioritySelector[transcription.Provider]{
//	    Priority: []string{"openai", "whisper"},
//	})
//	if err := mgr.Initialize("openai", cfg); err != nil { ... }
//	p, err := mgr.Get(ctx)
package provider
