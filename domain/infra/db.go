package infra

import (
	"os"
	"path"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"

	"github.com/colecperry/slack-bot/domain/model"
)

type DataBase struct {
	db *gorm.DB
}

func NewDataBase(dbpath string) (*DataBase, error) {
	if !path.IsAbs(dbpath) {
		dbpath = path.Join(os.Getenv("PWD"), dbpath)
	}
	db, err := gorm.Open("sqlite3", dbpath)
	if err != nil {
		return nil, err
	}
	db.AutoMigrate(&model.Standup{})
	return &DataBase{db: db}, nil
}

func (d *DataBase) SaveStandup(s *model.Standup) error {
	// Upsert on (user_id, timestamp) so a same-second resubmission
	// replaces the earlier row instead of failing the unique index.
	var existing model.Standup
	return d.db.Where(model.Standup{UserID: s.UserID, Timestamp: s.Timestamp}).
		Assign(map[string]interface{}{
			"user_name": s.UserName,
			"message":   s.Message,
		}).
		FirstOrCreate(&existing).Error
}

func (d *DataBase) GetLatestStandups(userID string, n int) ([]model.Standup, error) {
	var standups []model.Standup
	err := d.db.Where("user_id = ?", userID).
		Order("timestamp desc").
		Limit(n).
		Find(&standups).Error
	return standups, err
}

func (d *DataBase) GetStandupsBetween(start, end time.Time) ([]model.Standup, error) {
	var standups []model.Standup
	err := d.db.Where("timestamp >= ? AND timestamp < ?",
		model.FormatTimestamp(start), model.FormatTimestamp(end)).
		Order("timestamp asc").
		Find(&standups).Error
	return standups, err
}
