package mentionminer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"comment-insights/agents/mention-miner/youtube"
	"comment-insights/internal/models"
	"comment-insights/shared/ai"
	"comment-insights/shared/config"
	"comment-insights/shared/logger"
	"comment-insights/shared/monitoring"
	"comment-insights/shared/scheduler"
	"comment-insights/shared/storage"
)

// ErrAlreadyProcessed is returned when the ledger already holds rows for the
// video. Nothing is fetched, analyzed or written in that case.
var ErrAlreadyProcessed = errors.New("video already processed")

// CommentSource fetches comments and titles for a video.
type CommentSource interface {
	FetchComments(ctx context.Context, videoID string, maxResults int) []string
	FetchTitle(ctx context.Context, videoID string) string
}

// RunMetrics is reported to the scheduler after each run.
type RunMetrics struct {
	VideoID         string
	CommentsFetched int
	ItemsDetected   int
	RowsAdded       int
	RowsUpdated     int
	Skipped         bool
}

// GetSummary implements the scheduler.Metrics interface
func (m RunMetrics) GetSummary() string {
	if m.VideoID == "" {
		return "queue drained, nothing to do"
	}
	if m.Skipped {
		return fmt.Sprintf("video %s already processed, skipped", m.VideoID)
	}
	return fmt.Sprintf("video %s: fetched %d comments, detected %d items (%d new rows, %d updated)",
		m.VideoID, m.CommentsFetched, m.ItemsDetected, m.RowsAdded, m.RowsUpdated)
}

// MentionAgent runs the fetch → analyze → parse → merge pipeline for one
// video at a time. It implements scheduler.Agent.
type MentionAgent struct {
	config   *config.Config
	source   CommentSource
	analyzer ai.MentionAnalyzer
	out      io.Writer

	// attempted holds queued videos whose run wrote nothing. They are not
	// retried until the process restarts.
	attempted map[string]bool
}

type Option func(*MentionAgent)

// WithCommentSource replaces the YouTube client.
func WithCommentSource(source CommentSource) Option {
	return func(a *MentionAgent) { a.source = source }
}

// WithAnalyzer replaces the configured generative model.
func WithAnalyzer(analyzer ai.MentionAnalyzer) Option {
	return func(a *MentionAgent) { a.analyzer = analyzer }
}

// WithOutput sets where the human-readable run report is printed.
func WithOutput(out io.Writer) Option {
	return func(a *MentionAgent) { a.out = out }
}

func NewMentionAgent(cfg *config.Config, opts ...Option) *MentionAgent {
	a := &MentionAgent{
		config:    cfg,
		out:       os.Stdout,
		attempted: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *MentionAgent) Name() string {
	return "Mention Miner"
}

// Initialize builds the clients that were not injected.
func (a *MentionAgent) Initialize() error {
	logger.Infof("Initializing %s...", a.Name())
	ctx := context.Background()

	if a.source == nil {
		client, err := youtube.NewClient(ctx, &a.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		a.source = client
		logger.Infof("YouTube client initialized")
	}

	if a.analyzer == nil {
		analyzer, err := ai.New(ctx, &a.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI analyzer: %w", err)
		}
		a.analyzer = analyzer
		logger.Infof("AI analyzer initialized (%s, %s)", a.config.AI.Provider, a.config.AI.Model)
	}

	return nil
}

// Process runs the pipeline once for videoID.
func (a *MentionAgent) Process(ctx context.Context, videoID string) (*models.RunReport, error) {
	report := &models.RunReport{
		Video:     &models.Video{ID: videoID},
		StartedAt: time.Now(),
	}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	if a.source == nil || a.analyzer == nil {
		return nil, fmt.Errorf("agent not initialized")
	}

	existing, err := storage.LoadLedger(a.config.Ledger.Path)
	if err != nil {
		return nil, err
	}
	if existing.HasVideo(videoID) {
		return report, ErrAlreadyProcessed
	}

	fmt.Fprintln(a.out, "Fetching comments")
	comments := a.source.FetchComments(ctx, videoID, a.config.Run.MaxComments)
	report.CommentsFetched = len(comments)
	fmt.Fprintf(a.out, "Fetched %d comments.\n", len(comments))

	report.Video.Title = a.source.FetchTitle(ctx, videoID)
	fmt.Fprintf(a.out, "\nVideo title: %s\n", report.Video.Title)

	if len(comments) == 0 {
		logger.Warnf("No comments retrieved for %s, nothing to analyze", videoID)
		fmt.Fprintln(a.out, "No mentions detected. The ledger was not updated.")
		return report, nil
	}

	// Bound the prompt size.
	subset := comments[:min(len(comments), a.config.Run.PromptComments)]
	report.CommentsAnalyzed = len(subset)

	fmt.Fprintln(a.out, "Analyzing with AI")
	report.RawAnalysis = a.analyzer.AnalyzeComments(ctx, strings.Join(subset, "\n"))
	fmt.Fprintf(a.out, "\nMost requested/mentioned %s:\n\n%s\n", a.config.AI.Subject, report.RawAnalysis)

	report.Mentions = ai.ParseMentions(report.RawAnalysis)
	if len(report.Mentions) == 0 {
		fmt.Fprintln(a.out, "No mentions detected. The ledger was not updated.")
		return report, nil
	}

	fmt.Fprintln(a.out, "\nDetected items:")
	for _, item := range rankedItems(report.Mentions) {
		fmt.Fprintf(a.out, "%s (%d)\n", item, report.Mentions[item])
	}

	// Reload so the merge sees the file as it is now, not as it was before
	// the network calls.
	ledger, err := storage.LoadLedger(a.config.Ledger.Path)
	if err != nil {
		return report, err
	}
	report.RowsAdded, report.RowsUpdated = ledger.Merge(report.Mentions, report.Video.Title, videoID)
	if err := ledger.Save(); err != nil {
		return report, fmt.Errorf("failed to save ledger: %w", err)
	}
	report.LedgerWritten = true

	monitoring.MentionsMerged.WithLabelValues("added").Add(float64(report.RowsAdded))
	monitoring.MentionsMerged.WithLabelValues("updated").Add(float64(report.RowsUpdated))
	monitoring.LedgerRows.Set(float64(ledger.Len()))
	fmt.Fprintf(a.out, "Ledger updated: %s\n", ledger.Path())

	return report, nil
}

// RunOnce processes the first queued video that is not in the ledger yet.
func (a *MentionAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	videoID, err := a.nextVideo()
	if err != nil {
		return fmt.Errorf("failed to pick next video: %w", err)
	}
	if videoID == "" {
		logger.Infof("No unprocessed videos in queue")
		if events != nil && events.OnSuccess != nil {
			events.OnSuccess(RunMetrics{Skipped: true}, time.Since(startTime))
		}
		return nil
	}

	report, err := a.Process(ctx, videoID)
	if err != nil && !errors.Is(err, ErrAlreadyProcessed) {
		return fmt.Errorf("failed to process video %s: %w", videoID, err)
	}

	metrics := RunMetrics{VideoID: videoID, Skipped: errors.Is(err, ErrAlreadyProcessed)}
	if report != nil && !metrics.Skipped && !report.LedgerWritten {
		logger.Warnf("Nothing written for %s, skipping it for the rest of this run", videoID)
		a.attempted[videoID] = true
	}
	if report != nil {
		metrics.CommentsFetched = report.CommentsFetched
		metrics.ItemsDetected = len(report.Mentions)
		metrics.RowsAdded = report.RowsAdded
		metrics.RowsUpdated = report.RowsUpdated

		if !metrics.Skipped && report.Video.Title == youtube.TitleNotFound && events != nil && events.OnPartialFailure != nil {
			events.OnPartialFailure(fmt.Errorf("title lookup failed for %s", videoID), time.Since(startTime))
		}
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
	return nil
}

// nextVideo returns the first queued video with no ledger rows that has not
// already come up empty, or "" when the queue is drained.
func (a *MentionAgent) nextVideo() (string, error) {
	ledger, err := storage.LoadLedger(a.config.Ledger.Path)
	if err != nil {
		return "", err
	}
	for _, id := range a.config.Queue() {
		if !ledger.HasVideo(id) && !a.attempted[id] {
			return id, nil
		}
	}
	return "", nil
}

// rankedItems orders items by count, highest first, then by name.
func rankedItems(mentions map[string]int) []string {
	items := make([]string, 0, len(mentions))
	for item := range mentions {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if mentions[items[i]] != mentions[items[j]] {
			return mentions[items[i]] > mentions[items[j]]
		}
		return items[i] < items[j]
	})
	return items
}
