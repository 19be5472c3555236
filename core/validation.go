// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateVideoJob validates a VideoJob according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - SourcePath must not be empty
//   - Status must be a valid JobStatus
//   - Progress must be in [0,100]
//
// NOT validated:
//   - ID (0 is valid from database sequences)
func ValidateVideoJob(job *VideoJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidVideoJob)
	}

	if job.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVideoJob, ErrEmptyTitle)
	}

	if job.SourcePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVideoJob, ErrEmptySourcePath)
	}

	if err := ValidateJobStatus(job.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVideoJob, err)
	}

	if job.Progress < 0 || job.Progress > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidVideoJob, ErrInvalidProgress)
	}

	return nil
}

// ValidateFrameEvidence validates a FrameEvidence according to domain rules.
//
// Validation rules:
//   - VideoId must reference a job
//   - Timestamp must not be negative
//
// NOT validated (populated by the embedding provider):
//   - Vector (dimensionality depends on the configured model)
func ValidateFrameEvidence(frame *FrameEvidence) error {
	if frame == nil {
		return fmt.Errorf("%w: frame is nil", ErrInvalidFrameEvidence)
	}

	if frame.VideoId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFrameEvidence, ErrMissingVideoRef)
	}

	if frame.Timestamp < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFrameEvidence, ErrNegativeTimestamp)
	}

	return nil
}

// ValidateTextEvidence validates a TextEvidence according to domain rules.
//
// Validation rules:
//   - VideoId must reference a job
//   - StartTime must not be negative
//   - EndTime must not precede StartTime
func ValidateTextEvidence(segment *TextEvidence) error {
	if segment == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidTextEvidence)
	}

	if segment.VideoId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTextEvidence, ErrMissingVideoRef)
	}

	if segment.StartTime < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTextEvidence, ErrNegativeTimestamp)
	}

	if segment.EndTime < segment.StartTime {
		return fmt.Errorf("%w: %w", ErrInvalidTextEvidence, ErrInvalidTimeRange)
	}

	return nil
}

// ValidateJobStatus validates that a JobStatus has a valid value.
func ValidateJobStatus(status JobStatus) error {
	if status != JobStatusProcessing && status != JobStatusCompleted && status != JobStatusFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidJobStatus, status)
	}
	return nil
}
