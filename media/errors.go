package media

import "errors"

var (
	// ErrFFmpegNotFound is returned when the ffmpeg binary is not on PATH.
	ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

	// ErrFFprobeNotFound is returned when the ffprobe binary is not on PATH.
	ErrFFprobeNotFound = errors.New("ffprobe binary not found")

	// ErrNoVideoStream is returned when a file has no decodable video stream.
	ErrNoVideoStream = errors.New("no video stream found")

	// ErrInvalidInterval is returned for a non-positive sampling interval.
	ErrInvalidInterval = errors.New("sampling interval must be positive")
)
