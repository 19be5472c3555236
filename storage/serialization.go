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


package storage

import (
	"github.com/poiesic/scenedex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalVideoJob serializes a VideoJob to bytes.
func MarshalVideoJob(job *core.VideoJob) []byte {
	buf := make([]byte, core.VideoJobMUS.Size(*job))
	core.VideoJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalVideoJob deserializes a VideoJob from bytes.
func UnmarshalVideoJob(data []byte) (*core.VideoJob, error) {
	job, _, err := core.VideoJobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalFrameEvidence serializes a FrameEvidence to bytes.
func MarshalFrameEvidence(frame *core.FrameEvidence) []byte {
	buf := make([]byte, core.FrameEvidenceMUS.Size(*frame))
	core.FrameEvidenceMUS.Marshal(*frame, buf)
	return buf
}

// UnmarshalFrameEvidence deserializes a FrameEvidence from bytes.
func UnmarshalFrameEvidence(data []byte) (*core.FrameEvidence, error) {
	frame, _, err := core.FrameEvidenceMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

// MarshalTextEvidence serializes a TextEvidence to bytes.
func MarshalTextEvidence(segment *core.TextEvidence) []byte {
	buf := make([]byte, core.TextEvidenceMUS.Size(*segment))
	core.TextEvidenceMUS.Marshal(*segment, buf)
	return buf
}

// UnmarshalTextEvidence deserializes a TextEvidence from bytes.
func UnmarshalTextEvidence(data []byte) (*core.TextEvidence, error) {
	segment, _, err := core.TextEvidenceMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &segment, nil
}
