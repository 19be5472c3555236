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


package badger

import "github.com/poiesic/scenedex/storage"

// NewMemoryStores creates in-memory job, frame, and text repositories for testing.
// Caller must close all repos and the backend when done.
func NewMemoryStores() (storage.JobRepository, storage.FrameRepository, storage.TextRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	jobRepo, err := NewJobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	frameRepo, err := NewFrameRepository(backend)
	if err != nil {
		jobRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	textRepo, err := NewTextRepository(backend)
	if err != nil {
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return jobRepo, frameRepo, textRepo, backend, nil
}
