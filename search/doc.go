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


// Package search turns the two per-modality hit lists into one ranked
// scene list.
//
// A query string is embedded twice, once in the CLIP space shared with
// frame embeddings and once in the sentence-embedding space shared with
// transcript embeddings. The top hits of both queries are fused: hits
// close in time are clustered around the strongest hit, each cluster's
// score adds its best visual and best text evidence so cross-modal
// agreement ranks higher, and one SceneResult is emitted per cluster.
package search
