package model

import "time"

// TimestampLayout is the stored form of a standup timestamp: UTC, second
// precision. Lexicographic order of this layout matches chronological
// order, so both datastores can sort and range-scan on the raw string.
const TimestampLayout = "2006-01-02T15:04:05Z"

type Standup struct {
	ID        uint   `gorm:"primary_key"`
	UserID    string `gorm:"type:varchar(50);unique_index:idx_user_ts"` // Slack user ID of the submitter
	UserName  string `gorm:"type:varchar(100)"`                        // display name at submission time
	Timestamp string `gorm:"type:varchar(20);unique_index:idx_user_ts"`
	Message   string `gorm:"type:text"`
	CreatedAt time.Time
}

// FormatTimestamp renders t in the stored layout, always in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
