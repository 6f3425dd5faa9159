package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"comment-insights/internal/models"
)

// Header is the column layout of the ledger file.
var Header = []string{"item", "mentions", "video_title", "video_id"}

// Ledger is the CSV-backed table of mention counts per (item, video).
// It is loaded completely into memory and rewritten completely on Save.
type Ledger struct {
	filePath string
	records  []models.MentionRecord
	index    map[models.MentionKey]int
	mu       sync.RWMutex
}

// LoadLedger reads the ledger at path. A missing file yields an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{
		filePath: path,
		index:    make(map[models.MentionKey]int),
	}

	if err := l.load(); err != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", path, err)
	}

	return l, nil
}

// Path returns the file the ledger persists to.
func (l *Ledger) Path() string {
	return l.filePath
}

// HasVideo reports whether any row belongs to videoID.
func (l *Ledger) HasVideo(videoID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.VideoID == videoID {
			return true
		}
	}
	return false
}

// Merge adds mentions for one video. Counts for an existing (item, video)
// row are summed; unseen items get a new row with the given title. Rows are
// re-sorted by mentions, highest first.
func (l *Ledger) Merge(mentions map[string]int, videoTitle, videoID string) (added, updated int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]string, 0, len(mentions))
	for item := range mentions {
		items = append(items, item)
	}
	sort.Strings(items)

	for _, item := range items {
		count := mentions[item]
		key := models.MentionKey{Item: item, VideoID: videoID}
		if i, ok := l.index[key]; ok {
			l.records[i].Mentions += count
			updated++
			continue
		}
		l.records = append(l.records, models.MentionRecord{
			Item:       item,
			Mentions:   count,
			VideoTitle: videoTitle,
			VideoID:    videoID,
		})
		l.index[key] = len(l.records) - 1
		added++
	}

	l.sortLocked()
	return added, updated
}

// Records returns a copy of the rows in ledger order.
func (l *Ledger) Records() []models.MentionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.MentionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of rows.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) sortLocked() {
	sort.SliceStable(l.records, func(i, j int) bool {
		return l.records[i].Mentions > l.records[j].Mentions
	})
	for i, r := range l.records {
		l.index[r.Key()] = i
	}
}

// load reads the rows from the CSV file
func (l *Ledger) load() error {
	file, err := os.Open(l.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return err
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read ledger row: %w", err)
		}

		mentions, err := strconv.Atoi(row[1])
		if err != nil {
			return fmt.Errorf("invalid mention count %q on line %d: %w", row[1], line, err)
		}

		rec := models.MentionRecord{
			Item:       row[0],
			Mentions:   mentions,
			VideoTitle: row[2],
			VideoID:    row[3],
		}
		// A hand-edited file may repeat a pair; fold it into the first row.
		if i, ok := l.index[rec.Key()]; ok {
			l.records[i].Mentions += rec.Mentions
			continue
		}
		l.records = append(l.records, rec)
		l.index[rec.Key()] = len(l.records) - 1
	}

	return nil
}

func checkHeader(header []string) error {
	for i, col := range Header {
		if header[i] != col {
			return fmt.Errorf("unexpected ledger header %v, want %v", header, Header)
		}
	}
	return nil
}

// Save rewrites the whole ledger file. There is no staging file: a crash
// mid-write can leave a truncated ledger behind.
func (l *Ledger) Save() (err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if dir := filepath.Dir(l.filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	file, err := os.Create(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to create ledger file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close ledger file: %w", cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, r := range l.records {
		row := []string{r.Item, strconv.Itoa(r.Mentions), r.VideoTitle, r.VideoID}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}

	return nil
}
