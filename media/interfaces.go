package media

import (
	"context"

	"github.com/poiesic/scenedex/core"
)

// Frame is one sampled raster with its position in the source video.
type Frame struct {
	// JPEG holds the encoded raster bytes.
	JPEG []byte
	// Timestamp is the frame's position in seconds from the start.
	Timestamp float64
}

// ProbeResult holds stream metadata for a video file.
type ProbeResult struct {
	// Duration of the video in seconds. Zero when unknown.
	Duration float64
	// FrameRate of the video stream. Defaults to 24 when the container
	// does not report a usable rate.
	FrameRate float64
}

// AudioExtractor extracts the audio track of a video into a format the
// transcriber accepts.
type AudioExtractor interface {
	// ExtractAudio writes a mono 16 kHz PCM wav next to the video file
	// and returns its path.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

// Prober reports stream metadata for a video file.
type Prober interface {
	Probe(ctx context.Context, videoPath string) (ProbeResult, error)
}

// Transcriber converts an audio file into ordered, timestamped text segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]core.TranscriptSegment, error)
}

// FrameExtractor produces a lazy, finite, non-restartable stream of frames
// sampled from a video at a fixed interval.
type FrameExtractor interface {
	// ExtractFrames starts sampling one frame every intervalSeconds.
	// The returned stream must be closed by the caller.
	ExtractFrames(ctx context.Context, videoPath string, intervalSeconds float64) (FrameStream, error)
}

// FrameStream iterates sampled frames.
//
//	for frame, ok := stream.Next(); ok; frame, ok = stream.Next() { ... }
//	if err := stream.Err(); err != nil { ... }
type FrameStream interface {
	// Next returns the next frame. ok is false when the stream is exhausted
	// or failed; check Err to distinguish.
	Next() (frame Frame, ok bool)

	// Err returns the first error encountered while streaming, if any.
	Err() error

	// Close releases the underlying process and pipes. Idempotent.
	Close() error
}
