package domain

// VideoStats holds the raw engagement counters of a video.
// Missing counters are zero.
type VideoStats struct {
	Plays    uint64 `json:"plays"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
	Shares   uint64 `json:"shares"`
}

// VideoRecord is a parsed candidate video. CreateTime is Unix seconds, 0 when unknown.
type VideoRecord struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Author      string     `json:"author"`
	URL         string     `json:"url,omitempty"`
	CreateTime  int64      `json:"create_time,omitempty"`
	Stats       VideoStats `json:"stats"`
	Hashtags    []string   `json:"hashtags"`
	MusicTitle  string     `json:"music_title,omitempty"`
	SourceQuery string     `json:"source_query,omitempty"`
	SourceTags  []string   `json:"source_tags,omitempty"`
}
