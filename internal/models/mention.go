package models

// MentionRecord is one ledger row: how often an item was mentioned in the
// comments of a single video, accumulated across runs.
type MentionRecord struct {
	Item       string `json:"item"`
	Mentions   int    `json:"mentions"`
	VideoTitle string `json:"video_title"`
	VideoID    string `json:"video_id"`
}

// Key returns the (item, video) identity of the record.
func (r MentionRecord) Key() MentionKey {
	return MentionKey{Item: r.Item, VideoID: r.VideoID}
}

type MentionKey struct {
	Item    string
	VideoID string
}
