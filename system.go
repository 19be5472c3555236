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


package scenedex

import (
	"log/slog"

	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/ai/clip"
	"github.com/poiesic/scenedex/ai/openai"
	"github.com/poiesic/scenedex/ingestion"
	"github.com/poiesic/scenedex/media"
	"github.com/poiesic/scenedex/search"
	"github.com/poiesic/scenedex/storage"
	"github.com/poiesic/scenedex/storage/badger"
)

// System wires the storage backend, the three repositories, and the
// embedding providers into one handle. Pipelines and searchers are built
// from it on demand.
type System struct {
	backend   *badger.Backend
	jobRepo   storage.JobRepository
	frameRepo storage.FrameRepository
	textRepo  storage.TextRepository
	provider  ai.Provider

	whisperHost  string
	whisperModel string
	logger       *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig     *ai.Config
	whisperHost  string
	whisperModel string
}

// WithAIConfig overrides the embedding endpoint configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithTranscription sets the transcription server base URL and model.
func WithTranscription(host, model string) SystemOption {
	return func(o *systemOptions) {
		if host != "" {
			o.whisperHost = host
		}
		if model != "" {
			o.whisperModel = model
		}
	}
}

// NewSystem opens the store at filePath and connects the embedding
// services. The media binaries are only resolved when an ingestion
// pipeline is created, so a search-only process does not need ffmpeg.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig:     ai.DefaultConfig(),
		whisperHost:  "http://localhost:8080/v1",
		whisperModel: "whisper-1",
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	jobRepo, err := badger.NewJobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	frameRepo, err := badger.NewFrameRepository(backend)
	if err != nil {
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	textRepo, err := badger.NewTextRepository(backend)
	if err != nil {
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		textRepo.Close()
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	frameEmbedder, err := clip.NewFrameEmbedder(options.aiConfig)
	if err != nil {
		textRepo.Close()
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := ai.NewProvider(embedder, frameEmbedder)
	if err != nil {
		textRepo.Close()
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:      backend,
		jobRepo:      jobRepo,
		frameRepo:    frameRepo,
		textRepo:     textRepo,
		provider:     provider,
		whisperHost:  options.whisperHost,
		whisperModel: options.whisperModel,
		logger:       slog.Default(),
	}, nil
}

func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.textRepo.Close(); err != nil {
		s.logger.Error("error closing text repository", "err", err)
		return err
	}
	if err := s.frameRepo.Close(); err != nil {
		s.logger.Error("error closing frame repository", "err", err)
		return err
	}
	if err := s.jobRepo.Close(); err != nil {
		s.logger.Error("error closing job repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *System) JobRepository() storage.JobRepository {
	return s.jobRepo
}

func (s *System) FrameRepository() storage.FrameRepository {
	return s.frameRepo
}

func (s *System) TextRepository() storage.TextRepository {
	return s.textRepo
}

// NewIngestionPipeline builds a pipeline backed by the local ffmpeg and
// ffprobe binaries and the configured transcription server.
func (s *System) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ffmpeg, err := media.NewFFmpeg()
	if err != nil {
		return nil, err
	}
	whisper := media.NewWhisper(s.whisperHost, s.whisperModel)

	tooling := ingestion.Media{
		Audio:       ffmpeg,
		Prober:      ffmpeg,
		Transcriber: whisper,
		Frames:      ffmpeg,
	}
	return ingestion.NewPipeline(s.jobRepo, s.frameRepo, s.textRepo, s.provider, tooling, opts...)
}

func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.frameRepo, s.textRepo, s.provider, opts...)
}
