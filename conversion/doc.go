// Package conversion turns an uploaded audio file into a SubRip document.
//
// A Service validates the upload, spools it to a temporary file, asks a
// transcription provider for timed text and renders it with the subtitle
// assembler:
//
//	providers := conversion.NewProviders(cfg.Transcription, log)
//	svc, err := conversion.NewService(cfg.Conversion, providers.Manager(),
//	    conversion.WithGranularity(providers.Granularity()))
//	res, err := svc.Convert(ctx, conversion.Upload{FileName: "talk.mp3", Body: f}, conversion.Options{APIKey: key})
//
// Providers is a component.Component; register it before the HTTP server so
// the manager is populated when requests arrive.
package conversion
