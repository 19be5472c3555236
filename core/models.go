package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences or content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// JobStatus is the lifecycle state of a video ingestion job.
type JobStatus int

const (
	// JobStatusProcessing means ingestion is in flight.
	JobStatusProcessing JobStatus = iota + 1
	// JobStatusCompleted means ingestion finished with all evidence written.
	JobStatusCompleted
	// JobStatusFailed means ingestion aborted; evidence written so far remains.
	JobStatusFailed
)

// String returns the wire representation of the status.
func (s JobStatus) String() string {
	switch s {
	case JobStatusProcessing:
		return "processing"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// VideoJob tracks the lifecycle of one video ingestion run.
// Progress is an integer percentage in [0,100], monotonically
// non-decreasing while Status is processing.
type VideoJob struct {
	Id         ID
	Title      string
	SourcePath string
	Status     JobStatus
	Progress   int
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// FrameEvidence is one embedded video frame, persisted during the video phase.
// Immutable once written; ImagePath references a raster saved under the
// job-scoped frames directory.
type FrameEvidence struct {
	Id        ID
	VideoId   ID
	Timestamp float64
	ImagePath string
	Vector    []float32 // CLIP-space embedding, unit-normalized
}

// Tuple returns a string representation of the frame's identity as
// "(VideoId,Timestamp,ImagePath)". This is used for generating
// deterministic IDs.
func (f *FrameEvidence) Tuple() string {
	return "(" + strconv.FormatUint(uint64(f.VideoId), 10) + "," +
		strconv.FormatFloat(f.Timestamp, 'g', -1, 64) + "," + f.ImagePath + ")"
}

// TextEvidence is one embedded transcript segment, persisted during the audio phase.
type TextEvidence struct {
	Id        ID
	VideoId   ID
	StartTime float64
	EndTime   float64
	Text      string
	Vector    []float32 // sentence-embedding space, unit-normalized
}

// Tuple returns a string representation of the segment's identity as
// "(VideoId,StartTime,Text)". This is used for generating deterministic IDs.
func (t *TextEvidence) Tuple() string {
	return "(" + strconv.FormatUint(uint64(t.VideoId), 10) + "," +
		strconv.FormatFloat(t.StartTime, 'g', -1, 64) + "," + t.Text + ")"
}

// TranscriptSegment is a timestamped piece of transcribed speech,
// as produced by the transcription collaborator.
type TranscriptSegment struct {
	Start float64
	End   float64
	Text  string
}

// FrameHit is a frame evidence match from a vector similarity query.
type FrameHit struct {
	Timestamp float64
	ImagePath string
	Score     float32
}

// TextHit is a text evidence match from a vector similarity query.
type TextHit struct {
	StartTime float64
	EndTime   float64
	Text      string
	Score     float32
}

// MatchType describes how many modalities contributed to a scene.
type MatchType string

const (
	// MatchTypeHybrid means the scene has both visual and text evidence
	// with strictly positive scores.
	MatchTypeHybrid MatchType = "hybrid"
	// MatchTypeSingle means only one modality contributed.
	MatchTypeSingle MatchType = "single"
)

// SceneResult is one ranked entry returned to a search caller.
// It represents a temporally coherent cluster of evidence. Timestamp is
// the time of the cluster's best-scoring member; StartTime and EndTime
// span the whole cluster.
type SceneResult struct {
	Timestamp         float64
	StartTime         float64
	EndTime           float64
	Score             float64
	MatchType         MatchType
	PreviewPath       string
	TranscriptSnippet string
}
