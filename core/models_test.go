package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("frames/1/frame_0.jpg")
		id2 := IDFromContent("frames/1/frame_0.jpg")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		id1 := IDFromContent("frames/1/frame_0.jpg")
		id2 := IDFromContent("frames/1/frame_1.jpg")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		id := IDFromContent("")
		assert.NotZero(t, id)
	})
}

func TestJobStatusString(t *testing.T) {
	assert.Equal(t, "processing", JobStatusProcessing.String())
	assert.Equal(t, "completed", JobStatusCompleted.String())
	assert.Equal(t, "failed", JobStatusFailed.String())
	assert.Equal(t, "unknown", JobStatus(0).String())
}

func TestVideoJobRoundTrip(t *testing.T) {
	job := VideoJob{
		Id:         42,
		Title:      "launch.mp4",
		SourcePath: "uploads/launch.mp4",
		Status:     JobStatusProcessing,
		Progress:   37,
	}

	buf := make([]byte, VideoJobMUS.Size(job))
	VideoJobMUS.Marshal(job, buf)

	decoded, n, err := VideoJobMUS.Unmarshal(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, job.Id, decoded.Id)
	assert.Equal(t, job.Title, decoded.Title)
	assert.Equal(t, job.Status, decoded.Status)
	assert.Equal(t, job.Progress, decoded.Progress)
}

func TestFrameEvidenceRoundTrip(t *testing.T) {
	frame := FrameEvidence{
		Id:        7,
		VideoId:   42,
		Timestamp: 12.5,
		ImagePath: "frames/42/frame_7.jpg",
		Vector:    []float32{0.1, 0.2, 0.3},
	}

	buf := make([]byte, FrameEvidenceMUS.Size(frame))
	FrameEvidenceMUS.Marshal(frame, buf)

	decoded, _, err := FrameEvidenceMUS.Unmarshal(buf)
	assert.NoError(t, err)
	assert.Equal(t, frame.Timestamp, decoded.Timestamp)
	assert.Equal(t, frame.ImagePath, decoded.ImagePath)
	assert.Equal(t, frame.Vector, decoded.Vector)
}
