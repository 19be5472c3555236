// Package media is the boundary to external media tooling: ffmpeg for
// audio extraction and frame sampling, ffprobe for stream metadata, and a
// whisper server for speech transcription.
//
// Everything is behind small interfaces so the ingestion orchestrator can
// be tested without the external binaries or services.
package media
