// Package webui serves the browser upload page and the JSON API on a Gin
// engine.
//
// Browser routes:
//
//	GET  /            upload form
//	POST /transcribe  multipart form (api_key, audio_file, granularity); renders the result page
//	POST /download    returns the posted srt field as transcription.srt
//
// API routes:
//
//	POST /api/v1/transcriptions  multipart "file"; JSON result, or ?format=srt for the raw document
//	POST /api/v1/subtitles       {"units": [...], "policy": "reject|skip"}; no provider call
//	GET  /api/v1/timecodes       ?seconds=3661.25 renders one SRT timecode
//
// The API key is taken from an "Authorization: Bearer" header or the api_key
// form field and is never stored.
package webui
