package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultFrameRate is assumed when ffprobe does not report a usable rate.
const defaultFrameRate = 24.0

// FFmpeg shells out to the ffmpeg and ffprobe binaries. It implements
// AudioExtractor and Prober.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

// FFmpegOption configures an FFmpeg instance.
type FFmpegOption func(*FFmpeg)

// WithFFmpegPath overrides the ffmpeg binary path.
func WithFFmpegPath(path string) FFmpegOption {
	return func(f *FFmpeg) {
		f.ffmpegPath = path
	}
}

// WithFFprobePath overrides the ffprobe binary path.
func WithFFprobePath(path string) FFmpegOption {
	return func(f *FFmpeg) {
		f.ffprobePath = path
	}
}

// WithFFmpegLogger sets the logger used for command diagnostics.
func WithFFmpegLogger(logger *slog.Logger) FFmpegOption {
	return func(f *FFmpeg) {
		f.logger = logger
	}
}

// NewFFmpeg builds an FFmpeg wrapper. It verifies both binaries are
// resolvable so failures surface at startup rather than mid-ingestion.
func NewFFmpeg(opts ...FFmpegOption) (*FFmpeg, error) {
	f := &FFmpeg{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return f, nil
}

// ExtractAudio transcodes the audio track to a mono 16 kHz signed 16-bit
// PCM wav written next to the source file, and returns the wav path.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	audioPath := base + ".wav"

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		audioPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.Debug("extracting audio", "video", videoPath, "audio", audioPath)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w: %s",
			err, lastLine(stderr.String()))
	}
	return audioPath, nil
}

// ffprobe's JSON output, limited to the fields we read.
type probePayload struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reports the duration and frame rate of the first video stream.
// When the container carries no duration, it is derived from the frame
// count and rate. An unreported rate falls back to 24 fps.
func (f *FFmpeg) Probe(ctx context.Context, videoPath string) (ProbeResult, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	}

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe failed: %w: %s",
			err, lastLine(stderr.String()))
	}
	return parseProbeOutput(stdout.Bytes())
}

func parseProbeOutput(raw []byte) (ProbeResult, error) {
	var payload probePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ProbeResult{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var result ProbeResult
	var nbFrames float64
	found := false
	for _, stream := range payload.Streams {
		if stream.CodecType != "video" {
			continue
		}
		found = true
		result.FrameRate = parseFrameRate(stream.AvgFrameRate)
		if result.FrameRate == 0 {
			result.FrameRate = parseFrameRate(stream.RFrameRate)
		}
		if n, err := strconv.ParseFloat(stream.NbFrames, 64); err == nil {
			nbFrames = n
		}
		break
	}
	if !found {
		return ProbeResult{}, ErrNoVideoStream
	}
	if result.FrameRate <= 0 {
		result.FrameRate = defaultFrameRate
	}

	if d, err := strconv.ParseFloat(payload.Format.Duration, 64); err == nil && d > 0 {
		result.Duration = d
	} else if nbFrames > 0 {
		result.Duration = nbFrames / result.FrameRate
	}
	return result, nil
}

// parseFrameRate evaluates ffprobe's rational rate strings, e.g. "30000/1001".
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0
		}
		return v
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}

// lastLine returns the final non-empty line of command output, which is
// where ffmpeg puts the actual failure reason.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
