package models

import "time"

// Video is the subset of video metadata the miner needs.
type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RunReport summarizes a single pipeline run for one video.
type RunReport struct {
	Video            *Video         `json:"video"`
	CommentsFetched  int            `json:"comments_fetched"`
	CommentsAnalyzed int            `json:"comments_analyzed"`
	RawAnalysis      string         `json:"raw_analysis"`
	Mentions         map[string]int `json:"mentions"`
	RowsAdded        int            `json:"rows_added"`
	RowsUpdated      int            `json:"rows_updated"`
	LedgerWritten    bool           `json:"ledger_written"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration"`
}
