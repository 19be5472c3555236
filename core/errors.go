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

import "errors"

// Domain validation errors
var (
	// ErrInvalidVideoJob indicates a VideoJob failed validation.
	ErrInvalidVideoJob = errors.New("invalid video job")

	// ErrInvalidFrameEvidence indicates a FrameEvidence failed validation.
	ErrInvalidFrameEvidence = errors.New("invalid frame evidence")

	// ErrInvalidTextEvidence indicates a TextEvidence failed validation.
	ErrInvalidTextEvidence = errors.New("invalid text evidence")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidProgress indicates a progress value outside [0,100].
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")

	// ErrEmptyTitle indicates the job Title field is empty.
	ErrEmptyTitle = errors.New("job title cannot be empty")

	// ErrEmptySourcePath indicates the job SourcePath field is empty.
	ErrEmptySourcePath = errors.New("job source path cannot be empty")

	// ErrNegativeTimestamp indicates a negative evidence timestamp.
	ErrNegativeTimestamp = errors.New("timestamp cannot be negative")

	// ErrInvalidTimeRange indicates a text segment whose end precedes its start.
	ErrInvalidTimeRange = errors.New("segment end time cannot precede start time")

	// ErrMissingVideoRef indicates evidence without an owning job reference.
	ErrMissingVideoRef = errors.New("evidence must reference a video job")
)
