package infra

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colecperry/slack-bot/domain/model"
)

func newTestDB(t *testing.T) *DataBase {
	t.Helper()
	db, err := NewDataBase(filepath.Join(t.TempDir(), "standup_logs.db"))
	assert.NoError(t, err)
	return db
}

func TestDataBase_GetLatestStandups(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.SaveStandup(&model.Standup{
			UserID:    "U123",
			UserName:  "alice",
			Timestamp: model.FormatTimestamp(base.Add(time.Duration(i) * time.Hour)),
			Message:   fmt.Sprintf("update #%d", i),
		})
		assert.NoError(t, err)
	}
	// Another user's entries must not leak into the result.
	err := db.SaveStandup(&model.Standup{
		UserID:    "U456",
		UserName:  "bob",
		Timestamp: model.FormatTimestamp(base.Add(30 * time.Minute)),
		Message:   "bob's update",
	})
	assert.NoError(t, err)

	latest, err := db.GetLatestStandups("U123", 2)
	assert.NoError(t, err)
	assert.Len(t, latest, 2)
	assert.Equal(t, "update #2", latest[0].Message)
	assert.Equal(t, "update #1", latest[1].Message)
}

func TestDataBase_SaveStandup_SameSecondOverwrites(t *testing.T) {
	db := newTestDB(t)

	ts := model.FormatTimestamp(time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC))
	err := db.SaveStandup(&model.Standup{UserID: "U123", UserName: "alice", Timestamp: ts, Message: "first"})
	assert.NoError(t, err)
	err = db.SaveStandup(&model.Standup{UserID: "U123", UserName: "alice", Timestamp: ts, Message: "second"})
	assert.NoError(t, err)

	latest, err := db.GetLatestStandups("U123", 2)
	assert.NoError(t, err)
	assert.Len(t, latest, 1, "same (user, second) should keep a single entry")
	assert.Equal(t, "second", latest[0].Message)
}

func TestDataBase_GetStandupsBetween(t *testing.T) {
	db := newTestDB(t)

	start := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	entries := []struct {
		user string
		at   time.Time
		msg  string
	}{
		{"U1", start.Add(-time.Second), "before window"},
		{"U1", start, "at start"},
		{"U2", start.Add(12 * time.Hour), "midday"},
		{"U1", end.Add(-time.Second), "last second"},
		{"U2", end, "at end"},
	}
	for _, e := range entries {
		err := db.SaveStandup(&model.Standup{
			UserID:    e.user,
			Timestamp: model.FormatTimestamp(e.at),
			Message:   e.msg,
		})
		assert.NoError(t, err)
	}

	got, err := db.GetStandupsBetween(start, end)
	assert.NoError(t, err)

	var messages []string
	for _, s := range got {
		messages = append(messages, s.Message)
	}
	// Start bound inclusive, end bound exclusive, across users, ascending.
	assert.Equal(t, []string{"at start", "midday", "last second"}, messages)
}
