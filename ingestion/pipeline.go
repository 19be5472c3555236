package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/media"
	"github.com/poiesic/scenedex/storage"
)

// defaultBatchSize is the number of frames embedded per provider call.
// Batching amortizes the fixed cost of the embedding request; it is a
// tunable constant, not derived from the stream.
const defaultBatchSize = 32

// defaultFramesDir is where sampled frame rasters are written, one
// subdirectory per job.
const defaultFramesDir = "frames"

// Media groups the external tooling the pipeline drives. A single
// *media.FFmpeg instance typically fills the Audio, Prober, and Frames
// roles.
type Media struct {
	Audio       media.AudioExtractor
	Prober      media.Prober
	Transcriber media.Transcriber
	Frames      media.FrameExtractor
}

func (m Media) validate() error {
	if m.Audio == nil || m.Prober == nil || m.Transcriber == nil || m.Frames == nil {
		return ErrMediaRequired
	}
	return nil
}

// Pipeline orchestrates the ingestion of one video: audio phase
// (extract, transcribe, embed, persist text evidence), then video phase
// (sample frames, embed in batches, persist frame evidence), with
// monotonic progress written to the job record throughout.
type Pipeline struct {
	jobs          storage.JobRepository
	frames        storage.FrameRepository
	texts         storage.TextRepository
	embedder      ai.Embedder
	frameEmbedder ai.FrameEmbedder
	media         Media
	pool          *ants.Pool
	batchSize     int
	framesDir     string
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of frames per embedding call.
// Values below 1 are raised to 1. Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithFramesDir sets the directory frame rasters are written under.
// Default is "frames".
func WithFramesDir(dir string) Option {
	return func(p *Pipeline) error {
		if dir != "" {
			p.framesDir = dir
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for background jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	jobs storage.JobRepository,
	frames storage.FrameRepository,
	texts storage.TextRepository,
	provider ai.Provider,
	tooling Media,
	opts ...Option,
) (*Pipeline, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if frames == nil {
		return nil, ErrFrameRepositoryRequired
	}
	if texts == nil {
		return nil, ErrTextRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if err := tooling.validate(); err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		jobs:          jobs,
		frames:        frames,
		texts:         texts,
		embedder:      provider.Embedder(),
		frameEmbedder: provider.FrameEmbedder(),
		media:         tooling,
		pool:          pool,
		batchSize:     defaultBatchSize,
		framesDir:     defaultFramesDir,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Run ingests one video synchronously. All prior state is cleared first;
// this system indexes one video at a time. On success the job record ends
// at progress 100 with status completed. On any phase fault the job is
// marked failed with progress frozen at its last reported value, and the
// fault is returned. Evidence written before a fault is kept.
func (p *Pipeline) Run(ctx context.Context, sourcePath string, samplingInterval float64) error {
	if sourcePath == "" {
		return ErrEmptySourcePath
	}
	if samplingInterval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSamplingInterval, samplingInterval)
	}

	if err := p.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}

	job, err := p.jobs.Create(ctx, &core.VideoJob{
		Title:      filepath.Base(sourcePath),
		SourcePath: sourcePath,
		Status:     core.JobStatusProcessing,
	})
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	reporter := newProgressReporter(p.jobs, job.Id, p.logger)

	if err := p.runPhases(ctx, job, reporter, samplingInterval); err != nil {
		p.logger.Error("ingestion failed",
			"job_id", job.Id, "source", sourcePath, "err", err)
		// The status write must land even when the fault was a
		// cancellation, so it runs outside the job's context.
		if statusErr := p.jobs.SetStatus(context.WithoutCancel(ctx), job.Id, core.JobStatusFailed); statusErr != nil {
			p.logger.Error("failed to mark job failed",
				"job_id", job.Id, "err", statusErr)
		}
		return err
	}

	reporter.report(ctx, finishedProgress)
	if err := p.jobs.SetStatus(ctx, job.Id, core.JobStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	p.logger.Info("ingestion completed", "job_id", job.Id, "source", sourcePath)
	return nil
}

// JobHandle tracks a background ingestion job started with Start.
type JobHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Wait blocks until the job reaches a terminal state and returns the
// error Run ended with, if any.
func (h *JobHandle) Wait() error {
	<-h.done
	return h.err
}

// Done returns a channel that is closed when the job finishes.
func (h *JobHandle) Done() <-chan struct{} {
	return h.done
}

// Cancel requests cancellation. The job stops at the next phase or batch
// boundary and is marked failed.
func (h *JobHandle) Cancel() {
	h.cancel()
}

// Start runs Run on the worker pool and returns a handle for waiting on
// or cancelling the job. The job's observable state is the job record;
// callers poll it through the job repository.
func (p *Pipeline) Start(sourcePath string, samplingInterval float64) (*JobHandle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &JobHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	err := p.pool.Submit(func() {
		defer close(handle.done)
		defer cancel()
		handle.err = p.Run(ctx, sourcePath, samplingInterval)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	return handle, nil
}

// Reset clears all persisted state: job records, both evidence stores,
// and the frames directory. Idempotent. Reset does not interrupt a
// running job; cancel its handle first.
func (p *Pipeline) Reset(ctx context.Context) error {
	if err := p.jobs.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate jobs: %w", err)
	}
	if err := p.frames.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate frame evidence: %w", err)
	}
	if err := p.texts.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate text evidence: %w", err)
	}
	if err := os.RemoveAll(p.framesDir); err != nil {
		return fmt.Errorf("failed to remove frames directory: %w", err)
	}
	return nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) runPhases(ctx context.Context, job *core.VideoJob, reporter *progressReporter, samplingInterval float64) error {
	if err := p.runAudioPhase(ctx, job); err != nil {
		return fmt.Errorf("audio phase: %w", err)
	}
	reporter.report(ctx, audioPhaseProgress)

	if err := p.runVideoPhase(ctx, job, reporter, samplingInterval); err != nil {
		return fmt.Errorf("video phase: %w", err)
	}
	return nil
}

// runAudioPhase extracts and transcribes the audio track, embeds every
// segment in one provider call, and persists the text evidence.
func (p *Pipeline) runAudioPhase(ctx context.Context, job *core.VideoJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	audioPath, err := p.media.Audio.ExtractAudio(ctx, job.SourcePath)
	if err != nil {
		return err
	}
	// The intermediate wav is only needed for transcription.
	defer os.Remove(audioPath)

	segments, err := p.media.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		p.logger.Info("no transcript segments", "job_id", job.Id)
		return nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(segments) {
		return fmt.Errorf("%w: got %d vectors for %d segments",
			ErrEmbeddingCountMismatch, len(vectors), len(segments))
	}

	rows := make([]*core.TextEvidence, len(segments))
	for i, seg := range segments {
		rows[i] = &core.TextEvidence{
			VideoId:   job.Id,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Text:      seg.Text,
			Vector:    core.NormalizeVector(vectors[i]),
		}
	}
	if _, err := p.texts.AddTextEvidence(ctx, rows...); err != nil {
		return err
	}

	p.logger.Info("audio phase complete", "job_id", job.Id, "segments", len(rows))
	return nil
}

// runVideoPhase streams sampled frames, embeds them in batches, writes
// each raster under the job's frames directory, and persists the frame
// evidence. Progress is recomputed at every batch boundary from the last
// frame's timestamp; when the probed duration is unknown, progress stays
// at the audio phase value until the finish step.
func (p *Pipeline) runVideoPhase(ctx context.Context, job *core.VideoJob, reporter *progressReporter, samplingInterval float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	probe, err := p.media.Prober.Probe(ctx, job.SourcePath)
	if err != nil {
		return err
	}

	jobDir := filepath.Join(p.framesDir, strconv.FormatUint(uint64(job.Id), 10))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("failed to create frames directory: %w", err)
	}

	stream, err := p.media.Frames.ExtractFrames(ctx, job.SourcePath, samplingInterval)
	if err != nil {
		return err
	}
	defer stream.Close()

	batch := make([]media.Frame, 0, p.batchSize)
	frameIndex := 0
	for {
		frame, ok := stream.Next()
		if !ok {
			break
		}
		batch = append(batch, frame)
		if len(batch) < p.batchSize {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.persistFrameBatch(ctx, job, jobDir, batch, frameIndex); err != nil {
			return err
		}
		frameIndex += len(batch)
		reporter.reportVideo(ctx, batch[len(batch)-1].Timestamp, probe.Duration)
		batch = batch[:0]
	}
	if err := stream.Err(); err != nil {
		return err
	}

	if len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.persistFrameBatch(ctx, job, jobDir, batch, frameIndex); err != nil {
			return err
		}
		frameIndex += len(batch)
		reporter.reportVideo(ctx, batch[len(batch)-1].Timestamp, probe.Duration)
	}

	p.logger.Info("video phase complete", "job_id", job.Id, "frames", frameIndex)
	return nil
}

// persistFrameBatch embeds one batch of frames, writes each raster as
// frame_<idx>.jpg, and persists the evidence rows. startIndex is the
// global index of the batch's first frame, so artifact names stay
// deterministic across batches.
func (p *Pipeline) persistFrameBatch(ctx context.Context, job *core.VideoJob, jobDir string, batch []media.Frame, startIndex int) error {
	images := make([][]byte, len(batch))
	for i, frame := range batch {
		images[i] = frame.JPEG
	}

	vectors, err := p.frameEmbedder.EmbedImages(ctx, images)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d frames",
			ErrEmbeddingCountMismatch, len(vectors), len(batch))
	}

	jobID := strconv.FormatUint(uint64(job.Id), 10)
	rows := make([]*core.FrameEvidence, len(batch))
	for i, frame := range batch {
		name := fmt.Sprintf("frame_%d.jpg", startIndex+i)
		if err := os.WriteFile(filepath.Join(jobDir, name), frame.JPEG, 0o644); err != nil {
			return fmt.Errorf("failed to write frame raster: %w", err)
		}
		rows[i] = &core.FrameEvidence{
			VideoId:   job.Id,
			Timestamp: frame.Timestamp,
			ImagePath: path.Join("frames", jobID, name),
			Vector:    core.NormalizeVector(vectors[i]),
		}
	}

	_, err = p.frames.AddFrameEvidence(ctx, rows...)
	return err
}
