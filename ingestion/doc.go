// Package ingestion drives one video through the two-phase indexing job:
// audio extraction and transcription first, then frame sampling and
// embedding, with integer progress persisted on the job record so an
// external poller can render an indicator. A job ends in exactly one of
// two states, completed or failed, and starting a new job clears all
// evidence from the previous one.
package ingestion
