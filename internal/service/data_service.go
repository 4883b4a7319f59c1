package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	apperrors "focusgarden/backend/internal/errors"
	"focusgarden/backend/internal/model"
	"focusgarden/backend/internal/repository"
)

// DataService serves the view-layer-owned records: list definitions, the
// garden, daily stats and settings. Collections are saved whole, matching how
// the options surface edits them. Sessions never read list definitions after
// start (they carry their own copy), so replacing a collection mid-session is
// safe.
type DataService struct {
	kv *repository.KVRepository
}

func NewDataService(kv *repository.KVRepository) *DataService {
	return &DataService{kv: kv}
}

// Bootstrap seeds built-in defaults for keys that are absent on first run.
// It is only ever additive: a read error aborts instead of overwriting what
// may be real user data.
func (s *DataService) Bootstrap(ctx context.Context) error {
	seeds := []struct {
		key   string
		value interface{}
	}{
		{repository.KeyFocusLists, model.DefaultFocusLists()},
		{repository.KeyBlockLists, model.DefaultBlockLists()},
		{repository.KeyGarden, []model.GardenPlant{}},
		{repository.KeyStats, []model.CycleStat{}},
		{repository.KeySettings, model.DefaultSettings()},
	}

	for _, seed := range seeds {
		_, err := s.kv.Get(ctx, seed.key)
		if err == nil {
			continue
		}
		if err != repository.ErrNotFound {
			return fmt.Errorf("bootstrap %s: %w", seed.key, err)
		}
		if err := s.kv.Set(ctx, seed.key, seed.value); err != nil {
			return fmt.Errorf("bootstrap %s: %w", seed.key, err)
		}
	}
	return nil
}

func (s *DataService) FocusLists(ctx context.Context) ([]model.FocusList, *apperrors.APIError) {
	var lists []model.FocusList
	if err := s.load(ctx, repository.KeyFocusLists, &lists); err != nil {
		return nil, apperrors.Internal("failed to read focus lists")
	}
	if lists == nil {
		lists = []model.FocusList{}
	}
	return lists, nil
}

func (s *DataService) SaveFocusLists(ctx context.Context, lists []model.FocusList) ([]model.FocusList, *apperrors.APIError) {
	for i := range lists {
		if lists[i].Name == "" {
			return nil, apperrors.BadRequest("invalid_list", "list name is required")
		}
		if !lists[i].Valid() {
			return nil, apperrors.BadRequest("invalid_list", "focus and break durations must be positive")
		}
		if lists[i].ID == "" {
			lists[i].ID = uuid.NewString()
		}
	}
	if err := s.kv.Set(ctx, repository.KeyFocusLists, lists); err != nil {
		return nil, apperrors.Internal("failed to persist focus lists")
	}
	return lists, nil
}

func (s *DataService) BlockLists(ctx context.Context) ([]model.BlockList, *apperrors.APIError) {
	var lists []model.BlockList
	if err := s.load(ctx, repository.KeyBlockLists, &lists); err != nil {
		return nil, apperrors.Internal("failed to read block lists")
	}
	if lists == nil {
		lists = []model.BlockList{}
	}
	return lists, nil
}

func (s *DataService) SaveBlockLists(ctx context.Context, lists []model.BlockList) ([]model.BlockList, *apperrors.APIError) {
	for i := range lists {
		if lists[i].Name == "" {
			return nil, apperrors.BadRequest("invalid_list", "list name is required")
		}
		switch lists[i].Type {
		case model.BlockListBlock, model.BlockListAllow:
		case "":
			lists[i].Type = model.BlockListBlock
		default:
			return nil, apperrors.BadRequest("invalid_list", "type must be block or allow")
		}
		if lists[i].ID == "" {
			lists[i].ID = uuid.NewString()
		}
	}
	if err := s.kv.Set(ctx, repository.KeyBlockLists, lists); err != nil {
		return nil, apperrors.Internal("failed to persist block lists")
	}
	return lists, nil
}

func (s *DataService) Garden(ctx context.Context) ([]model.GardenPlant, *apperrors.APIError) {
	var garden []model.GardenPlant
	if err := s.load(ctx, repository.KeyGarden, &garden); err != nil {
		return nil, apperrors.Internal("failed to read garden")
	}
	if garden == nil {
		garden = []model.GardenPlant{}
	}
	return garden, nil
}

func (s *DataService) Stats(ctx context.Context) ([]model.CycleStat, *apperrors.APIError) {
	var stats []model.CycleStat
	if err := s.load(ctx, repository.KeyStats, &stats); err != nil {
		return nil, apperrors.Internal("failed to read stats")
	}
	if stats == nil {
		stats = []model.CycleStat{}
	}
	return stats, nil
}

func (s *DataService) Settings(ctx context.Context) (*model.Settings, *apperrors.APIError) {
	settings := model.DefaultSettings()
	if err := s.load(ctx, repository.KeySettings, &settings); err != nil {
		return nil, apperrors.Internal("failed to read settings")
	}
	return &settings, nil
}

func (s *DataService) SaveSettings(ctx context.Context, settings model.Settings) (*model.Settings, *apperrors.APIError) {
	if settings.SoundID != model.SoundNone {
		if _, ok := model.SoundURLs[settings.SoundID]; !ok {
			return nil, apperrors.BadRequest("invalid_sound", "unknown notification sound")
		}
	}
	if settings.MusicVolume < 0 || settings.MusicVolume > 1 {
		return nil, apperrors.BadRequest("invalid_volume", "volume must be between 0 and 1")
	}
	if err := s.kv.Set(ctx, repository.KeySettings, settings); err != nil {
		return nil, apperrors.Internal("failed to persist settings")
	}
	return &settings, nil
}

func (s *DataService) load(ctx context.Context, key string, out interface{}) error {
	raw, err := s.kv.Get(ctx, key)
	if err == repository.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
