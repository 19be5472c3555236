package api

import "github.com/poiesic/scenedex/core"

// StatusNoIndex is reported when no video has been ingested yet.
const StatusNoIndex = "no_index"

type RootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type StatusResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
	Progress int    `json:"progress"`
}

type SceneResponse struct {
	Timestamp         float64 `json:"timestamp"`
	StartTime         float64 `json:"start_time"`
	EndTime           float64 `json:"end_time"`
	Score             float64 `json:"score"`
	MatchType         string  `json:"match_type"`
	PreviewPath       string  `json:"preview_path"`
	TranscriptSnippet string  `json:"transcript_snippet"`
}

type SearchResponse struct {
	Query   string          `json:"query"`
	Results []SceneResponse `json:"results"`
}

type ResetResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SceneToResponse(s core.SceneResult) SceneResponse {
	return SceneResponse{
		Timestamp:         s.Timestamp,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		Score:             s.Score,
		MatchType:         string(s.MatchType),
		PreviewPath:       s.PreviewPath,
		TranscriptSnippet: s.TranscriptSnippet,
	}
}
