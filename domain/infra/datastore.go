package infra

import (
	"time"

	"github.com/colecperry/slack-bot/domain/model"
)

type Datastore interface {
	// Persist a standup entry. Writing the same (user_id, timestamp)
	// twice overwrites: last write wins.
	SaveStandup(*model.Standup) error
	// Up to n most recent entries for a user, newest first.
	GetLatestStandups(userID string, n int) ([]model.Standup, error)
	// All entries across users with timestamp in [start, end).
	GetStandupsBetween(start, end time.Time) ([]model.Standup, error)
}
