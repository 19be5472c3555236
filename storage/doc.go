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


// Package storage provides the storage abstraction layer for scenedex.
//
// This package defines repository interfaces that decouple storage implementation
// from the ingestion and search layers. It allows for different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - JobRepository: lifecycle of the (single) video ingestion job
//   - FrameRepository: frame evidence rows and their vector queries
//   - TextRepository: transcript-segment evidence rows and their vector queries
//
// Vector queries are cosine top-K scans; evidence vectors are expected to be
// unit-normalized by the writer so similarity reduces to a dot product.
//
// # Usage
//
// Create repositories over a badger backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	jobs, err := badger.NewJobRepository(backend)
//
// Use in tests with in-memory storage:
//
//	jobs, frames, texts, backend, err := badger.NewMemoryStores()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. The query path may run
// concurrently with an in-flight ingestion job.
package storage
