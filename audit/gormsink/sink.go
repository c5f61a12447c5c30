package gormsink

import (
	"time"

	"github.com/lintangjaya/go-storefront/audit"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Record is the persisted shape of an audit event. Rows are append-only; this
// subsystem never updates or deletes them.
type Record struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Action      string    `gorm:"index"`
	UserID      string    `gorm:"index"`
	UserEmail   string
	Description string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

func (Record) TableName() string {
	return "audit_logs"
}

var _ audit.Sink = (*Sink)(nil)

// Sink persists audit events through GORM.
type Sink struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Sink {
	return &Sink{db: db}
}

// Migrate creates or updates the audit_logs table.
func (s *Sink) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *Sink) Write(event audit.Event) error {
	record := Record{
		Action:      string(event.Action),
		UserID:      event.UserID,
		UserEmail:   event.UserEmail,
		Description: event.Description,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
		CreatedAt:   event.Timestamp,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return errors.Wrap(err, "[Sink.Write] db.Create")
	}
	return nil
}

// Count returns the number of persisted audit rows (used by the admin
// dashboard).
func (s *Sink) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Record{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "[Sink.Count] db.Count")
	}
	return count, nil
}
