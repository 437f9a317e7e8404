// store/store.go
package store

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sapogames/roomkit/games"
	"github.com/sapogames/roomkit/logger"
)

const nicknameKey = "nickname"

// Store keeps the device-local state: one session record per
// (game, room code) pair and a device-wide nickname cache. Sessions are
// immutable once created and are abandoned rather than deleted when the
// player leaves a room.
//
// All read methods tolerate a nil Store: storage being unavailable means
// "no session", never an error.
type Store struct {
	db *gorm.DB
}

// SessionRecord is a persisted room session, keyed by game slug and
// normalized room code. The session itself is stored as a JSON blob so the
// record survives additions to the session shape.
type SessionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Game      string `gorm:"uniqueIndex:idx_game_room;not null"`
	RoomCode  string `gorm:"uniqueIndex:idx_game_room;not null"`
	Payload   string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SettingRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// Open opens (creating if necessary) the local database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "roomkit.db")), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SessionRecord{}, &SettingRecord{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// LoadSession returns the persisted session for the given game and room
// code, or nil when absent or corrupt. A corrupt record is deleted as a
// side effect, never surfaced as an error.
func (s *Store) LoadSession(game, roomCode string) *games.Session {
	if s == nil {
		return nil
	}

	code := games.NormalizeRoomCode(roomCode)

	var record SessionRecord
	err := s.db.Where("game = ? AND room_code = ?", game, code).First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L().Warnf("failed to read session for %s/%s: %v", game, code, err)
		}
		return nil
	}

	var sess games.Session
	if err := json.Unmarshal([]byte(record.Payload), &sess); err != nil {
		s.db.Delete(&record)
		return nil
	}
	return &sess
}

// SaveSession persists the session, overwriting any record for the same
// game and room code.
func (s *Store) SaveSession(game string, sess *games.Session) error {
	if s == nil || sess == nil {
		return nil
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	code := games.NormalizeRoomCode(sess.RoomCode)

	var record SessionRecord
	result := s.db.Where("game = ? AND room_code = ?", game, code).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = SessionRecord{
			Game:     game,
			RoomCode: code,
			Payload:  string(payload),
		}
		return s.db.Create(&record).Error
	} else if result.Error != nil {
		return result.Error
	}

	record.Payload = string(payload)
	record.UpdatedAt = time.Now()
	return s.db.Save(&record).Error
}

// Nickname returns the device-wide cached nickname, or "".
func (s *Store) Nickname() string {
	if s == nil {
		return ""
	}

	var record SettingRecord
	if err := s.db.Where("key = ?", nicknameKey).First(&record).Error; err != nil {
		return ""
	}
	return record.Value
}

// SaveNickname caches the nickname for reuse across games.
func (s *Store) SaveNickname(nickname string) error {
	if s == nil {
		return nil
	}

	var record SettingRecord
	result := s.db.Where("key = ?", nicknameKey).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = SettingRecord{Key: nicknameKey, Value: nickname}
		return s.db.Create(&record).Error
	} else if result.Error != nil {
		return result.Error
	}

	record.Value = nickname
	record.UpdatedAt = time.Now()
	return s.db.Save(&record).Error
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
