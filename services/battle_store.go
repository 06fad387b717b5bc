package services

import (
	"errors"
	"fmt"
	"time"

	"dish-battle-server/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBattleNotFound is returned for an unknown battle id.
var ErrBattleNotFound = errors.New("battle not found")

// BattleStore persists battle records and the matchmaking pool.
type BattleStore interface {
	CreateBattle(rec *models.BattleRecord) error
	SaveBattle(rec *models.BattleRecord) error
	GetBattle(id string) (models.BattleRecord, error)
	UpsertPoolEntries(entries []models.TeamPoolEntry) error
	ListPool() ([]models.TeamPoolEntry, error)
	PruneBattles(before time.Time) (int64, error)
	PrunePool(before time.Time) (int64, error)
}

// GormBattleStore is the BattleStore backed by gorm.
type GormBattleStore struct {
	DB *gorm.DB
}

func NewGormBattleStore(db *gorm.DB) *GormBattleStore {
	return &GormBattleStore{DB: db}
}

func (s *GormBattleStore) CreateBattle(rec *models.BattleRecord) error {
	if err := s.DB.Create(rec).Error; err != nil {
		return fmt.Errorf("create battle %s: %w", rec.ID, err)
	}
	return nil
}

func (s *GormBattleStore) SaveBattle(rec *models.BattleRecord) error {
	if err := s.DB.Save(rec).Error; err != nil {
		return fmt.Errorf("save battle %s: %w", rec.ID, err)
	}
	return nil
}

func (s *GormBattleStore) GetBattle(id string) (models.BattleRecord, error) {
	var rec models.BattleRecord
	if err := s.DB.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, ErrBattleNotFound
		}
		return rec, fmt.Errorf("get battle %s: %w", id, err)
	}
	return rec, nil
}

// UpsertPoolEntries inserts entries, replacing any with the same team id.
func (s *GormBattleStore) UpsertPoolEntries(entries []models.TeamPoolEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"round",
			"shop_tier",
			"team",
			"source",
			"added_at",
			"updated_at",
			"deleted_at",
		}),
	}).Create(&entries).Error
	if err != nil {
		return fmt.Errorf("upsert %d pool entries: %w", len(entries), err)
	}
	return nil
}

// ListPool returns every pool entry ordered by insertion time then team id.
func (s *GormBattleStore) ListPool() ([]models.TeamPoolEntry, error) {
	var entries []models.TeamPoolEntry
	if err := s.DB.Order("added_at ASC").Order("team_id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list pool: %w", err)
	}
	return entries, nil
}

// PruneBattles hard-deletes finished battles last updated before the cutoff.
func (s *GormBattleStore) PruneBattles(before time.Time) (int64, error) {
	res := s.DB.Unscoped().
		Where("status IN ? AND updated_at < ?", []models.BattleStatus{models.BattleComplete, models.BattleError}, before).
		Delete(&models.BattleRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune battles: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PrunePool removes player pool entries added before the cutoff. Entries
// loaded from opponent files are refreshed by the sync worker instead.
func (s *GormBattleStore) PrunePool(before time.Time) (int64, error) {
	res := s.DB.Unscoped().
		Where("source = ? AND added_at < ?", models.PoolSourcePlayer, before).
		Delete(&models.TeamPoolEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune pool: %w", res.Error)
	}
	return res.RowsAffected, nil
}
