// Package transcription defines the provider interface and common types
// for speech-to-text backends.
//
// Backends register a provider.Factory with a Registry and are selected at
// runtime through a provider.Manager.
//
// # Backends
//
//   - transcription/openai: OpenAI audio transcription API
//   - transcription/whisper: faster-whisper HTTP sidecar
//
// # Usage
//
//	mgr := transcription.NewManager()
//	mgr.Registry().RegisterFactory(openai.ProviderName, openai.Factory())
//	_ = mgr.Initialize(openai.ProviderName, map[string]any{"api_key": key})
//	p, _ := mgr.Get(ctx)
//	resp, err := p.Transcribe(ctx, transcription.Request{AudioPath: path})
//	units, err := resp.Units(transcription.GranularitySegment)
package transcription
