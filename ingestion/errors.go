package ingestion

import "errors"

var (
	// ErrJobRepositoryRequired is returned when no job repository is provided.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrFrameRepositoryRequired is returned when no frame repository is provided.
	ErrFrameRepositoryRequired = errors.New("frame repository is required")

	// ErrTextRepositoryRequired is returned when no text repository is provided.
	ErrTextRepositoryRequired = errors.New("text repository is required")

	// ErrAIProviderRequired is returned when no embedding provider is provided.
	ErrAIProviderRequired = errors.New("ai provider is required")

	// ErrMediaRequired is returned when a media collaborator is missing.
	ErrMediaRequired = errors.New("all media collaborators are required")

	// ErrEmptySourcePath is returned when Run is given an empty video path.
	ErrEmptySourcePath = errors.New("source path must not be empty")

	// ErrInvalidSamplingInterval is returned for a non-positive frame
	// sampling interval.
	ErrInvalidSamplingInterval = errors.New("sampling interval must be positive")

	// ErrEmbeddingCountMismatch is returned when the embedding provider
	// yields a different number of vectors than inputs.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match input count")
)
