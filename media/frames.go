package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// JPEG start-of-image / end-of-image markers. In entropy-coded data every
// 0xFF byte is stuffed with a 0x00, so the marker pairs below only occur
// at real image boundaries.
var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// ExtractFrames samples one frame every intervalSeconds as MJPEG streamed
// over a pipe, avoiding a temp directory full of intermediate files. The
// n-th yielded frame carries timestamp n*intervalSeconds.
func (f *FFmpeg) ExtractFrames(ctx context.Context, videoPath string, intervalSeconds float64) (FrameStream, error) {
	if intervalSeconds <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, intervalSeconds)
	}

	args := []string{
		"-i", videoPath,
		"-vf", "fps=1/" + strconv.FormatFloat(intervalSeconds, 'f', -1, 64),
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "2",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	f.logger.Debug("sampling frames",
		"video", videoPath, "interval_seconds", intervalSeconds)

	return &mjpegStream{
		cmd:      cmd,
		stdout:   stdout,
		reader:   bufio.NewReaderSize(stdout, 1<<16),
		stderr:   &stderr,
		interval: intervalSeconds,
	}, nil
}

// mjpegStream splits a concatenated MJPEG byte stream into frames.
type mjpegStream struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	reader   *bufio.Reader
	stderr   *bytes.Buffer
	interval float64

	index int
	err   error

	closeOnce sync.Once
	closeErr  error
}

func (s *mjpegStream) Next() (Frame, bool) {
	if s.err != nil {
		return Frame{}, false
	}

	data, err := s.readImage()
	if err != nil {
		if err != io.EOF {
			s.err = err
		} else if waitErr := s.cmd.Wait(); waitErr != nil {
			s.err = fmt.Errorf("ffmpeg frame sampling failed: %w: %s",
				waitErr, lastLine(s.stderr.String()))
		}
		return Frame{}, false
	}

	frame := Frame{
		JPEG:      data,
		Timestamp: float64(s.index) * s.interval,
	}
	s.index++
	return frame, true
}

// readImage consumes one SOI..EOI span from the stream.
func (s *mjpegStream) readImage() ([]byte, error) {
	if err := s.seekMarker(jpegSOI); err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(nil)
	buf.Write(jpegSOI)
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("truncated jpeg frame at index %d", s.index)
			}
			return nil, err
		}
		buf.WriteByte(b)
		if b != jpegEOI[0] {
			continue
		}
		next, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("truncated jpeg frame at index %d", s.index)
			}
			return nil, err
		}
		buf.WriteByte(next)
		if next == jpegEOI[1] {
			return buf.Bytes(), nil
		}
	}
}

// seekMarker discards bytes until the two-byte marker is consumed.
func (s *mjpegStream) seekMarker(marker []byte) error {
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if b != marker[0] {
			continue
		}
		next, err := s.reader.ReadByte()
		if err != nil {
			return err
		}
		if next == marker[1] {
			return nil
		}
		// A lone 0xFF followed by something else; re-examine the
		// second byte in case it starts the marker itself.
		if next == marker[0] {
			if err := s.reader.UnreadByte(); err != nil {
				return err
			}
		}
	}
}

func (s *mjpegStream) Err() error {
	return s.err
}

func (s *mjpegStream) Close() error {
	s.closeOnce.Do(func() {
		s.stdout.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		// Wait reaps the process; a kill-induced exit error is expected.
		_ = s.cmd.Wait()
	})
	return s.closeErr
}
