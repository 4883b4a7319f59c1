package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"focusgarden/backend/internal/alarm"
	apperrors "focusgarden/backend/internal/errors"
	"focusgarden/backend/internal/model"
	"focusgarden/backend/internal/notify"
	"focusgarden/backend/internal/repository"
)

// Scheduler is the wake-up primitive the engine keeps in sync with the active
// session's deadline.
type Scheduler interface {
	Schedule(name string, whenMillis int64)
	Cancel(name string)
}

// SessionService owns the lifecycle of the single active focus/break session:
// prep -> focus -> break -> none, plus abandonment and extension. Persisted
// storage is the only durable copy of the session; every transition re-reads
// it inside its own transaction before acting, so two racing observers (an
// interactive poll and the detached alarm callback) apply each deadline at
// most once. The session write and its garden/stat accrual commit in one
// transaction.
type SessionService struct {
	kv       *repository.KVRepository
	sched    Scheduler
	notifier notify.Notifier
	player   notify.Player
	now      func() time.Time
}

func NewSessionService(
	kv *repository.KVRepository,
	sched Scheduler,
	notifier notify.Notifier,
	player notify.Player,
) *SessionService {
	return &SessionService{
		kv:       kv,
		sched:    sched,
		notifier: notifier,
		player:   player,
		now:      time.Now,
	}
}

type SessionView struct {
	Session          *model.Session `json:"session"`
	State            string         `json:"state"`
	RemainingSeconds int            `json:"remainingSeconds"`
	ServerTime       int64          `json:"serverTime"`
}

// Snapshot returns the current session state, applying any elapsed transition
// first. A caller polling a countdown lands here, so an expired deadline is
// never shown as a negative countdown.
func (s *SessionService) Snapshot(ctx context.Context) (*SessionView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}

	session, err = s.normalizeExpiredTx(ctx, tx, session, now)
	if err != nil {
		return nil, apperrors.Internal("failed to apply elapsed transition")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.syncAlarm(session)
	view := s.toView(session, now)
	return &view, nil
}

// Start creates the active session from the named focus list. The session
// embeds a full copy of the list, so later edits to the definition cannot
// touch a running session.
func (s *SessionService) Start(ctx context.Context, listID string, withPrep bool) (*SessionView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	session, err = s.normalizeExpiredTx(ctx, tx, session, now)
	if err != nil {
		return nil, apperrors.Internal("failed to apply elapsed transition")
	}
	if session != nil {
		return nil, apperrors.Conflict("session_active", "a session is already running", nil)
	}

	var lists []model.FocusList
	if _, err := s.getTx(ctx, tx, repository.KeyFocusLists, &lists); err != nil {
		return nil, apperrors.Internal("failed to read focus lists")
	}
	var list *model.FocusList
	for i := range lists {
		if lists[i].ID == listID {
			list = &lists[i]
			break
		}
	}
	if list == nil {
		return nil, apperrors.NotFound("list_not_found", "focus list not found")
	}
	if !list.Valid() {
		return nil, apperrors.BadRequest("invalid_list", "focus and break durations must be positive")
	}

	nowMillis := now.UnixMilli()
	session = &model.Session{List: *list}
	if withPrep {
		session.State = model.StatePrep
		session.StartTime = nowMillis
		session.EndTime = nowMillis + model.PrepDurationMillis
	} else {
		session.State = model.StateFocus
		session.StartTime = nowMillis
		session.EndTime = nowMillis + list.FocusDurationMillis()
	}

	if err := s.kv.SetTx(ctx, tx, repository.KeyActiveSession, session); err != nil {
		return nil, apperrors.Internal("failed to persist session")
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.syncAlarm(session)
	view := s.toView(session, now)
	return &view, nil
}

// CompletePrep moves a prep session into focus. The countdown reaching zero
// and the caller cutting prep short take the same path; on any other state
// the call is an idempotent no-op.
func (s *SessionService) CompletePrep(ctx context.Context) (*SessionView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	if session != nil && session.State == model.StatePrep {
		session = enterFocus(session, now.UnixMilli())
		if err := s.kv.SetTx(ctx, tx, repository.KeyActiveSession, session); err != nil {
			return nil, apperrors.Internal("failed to persist session")
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.syncAlarm(session)
	view := s.toView(session, now)
	return &view, nil
}

// Extend pushes an expired focus session fifteen minutes past now. A session
// that is not in focus, or whose deadline has not passed, is left untouched.
func (s *SessionService) Extend(ctx context.Context) (*SessionView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}

	applied := false
	if session != nil && session.State == model.StateFocus && session.Expired(now.UnixMilli()) {
		nowMillis := now.UnixMilli()
		session.StartTime = nowMillis
		session.EndTime = nowMillis + model.ExtendDurationMillis
		if err := s.kv.SetTx(ctx, tx, repository.KeyActiveSession, session); err != nil {
			return nil, apperrors.Internal("failed to persist session")
		}
		applied = true
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	if applied {
		s.syncAlarm(session)
	}
	view := s.toView(session, now)
	return &view, nil
}

// GiveUp abandons the active session unconditionally. Unless the session is
// exactly in prep, abandonment is penalized with a withered plant and an
// interrupted count; any unexpected state value takes the penalized branch.
func (s *SessionService) GiveUp(ctx context.Context) (*SessionView, *apperrors.APIError) {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session")
	}
	if session == nil {
		view := s.toView(nil, now)
		return &view, nil
	}

	if session.State != model.StatePrep {
		if err := s.accrueTx(ctx, tx, now, model.PlantWithered); err != nil {
			return nil, apperrors.Internal("failed to record interruption")
		}
	}
	if err := s.kv.DeleteTx(ctx, tx, repository.KeyActiveSession); err != nil {
		return nil, apperrors.Internal("failed to clear session")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	s.sched.Cancel(alarm.FocusTimer)
	s.player.StopMusic()
	view := s.toView(nil, now)
	return &view, nil
}

// HandleAlarm runs in the scheduler's detached context when the deadline
// fires: it stops ambient audio, raises the notification for whichever
// deadline passed, and applies the elapsed transition. Failures are logged
// and self-heal on the next poll.
func (s *SessionService) HandleAlarm(name string) {
	if name != alarm.FocusTimer {
		return
	}

	ctx := context.Background()
	now := s.now()

	raw, err := s.kv.Get(ctx, repository.KeyActiveSession)
	if err == repository.ErrNotFound {
		return
	}
	if err != nil {
		log.Printf("alarm: read session: %v", err)
		return
	}
	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		log.Printf("alarm: decode session: %v", err)
		return
	}

	settings := s.loadSettings(ctx)
	message := settings.BreakCompleteMessage
	if session.State == model.StateFocus {
		message = settings.FocusCompleteMessage
	}

	s.player.StopMusic()
	s.notifier.Notify(settings.NotificationTitle, message)
	if settings.SoundID != model.SoundNone {
		if url, ok := model.SoundURLs[settings.SoundID]; ok {
			s.player.PlaySound(url)
		}
	}

	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		log.Printf("alarm: begin tx: %v", err)
		return
	}
	defer tx.Rollback()

	current, err := s.sessionTx(ctx, tx)
	if err != nil {
		log.Printf("alarm: re-read session: %v", err)
		return
	}
	current, err = s.normalizeExpiredTx(ctx, tx, current, now)
	if err != nil {
		log.Printf("alarm: apply transition: %v", err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("alarm: commit: %v", err)
		return
	}
	s.syncAlarm(current)
}

// Recover reconstructs engine state on cold start. A session that fully
// elapsed while the process was unloaded runs its elapsed transition now,
// with exactly one accrual; a still-running one just gets its wake-up
// rescheduled. A storage read failure is returned to the caller, never
// papered over with an empty state.
func (s *SessionService) Recover(ctx context.Context) error {
	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	defer tx.Rollback()

	session, err := s.sessionTx(ctx, tx)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	session, err = s.normalizeExpiredTx(ctx, tx, session, now)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recover: %w", err)
	}

	s.syncAlarm(session)
	return nil
}

// ActiveBlockList resolves the contract handed to the content-blocking
// consumer: the block list of the session currently in focus, nil when
// nothing should be blocked. A dangling blockListId resolves to no blocking.
func (s *SessionService) ActiveBlockList(ctx context.Context) (*model.BlockList, *apperrors.APIError) {
	view, apiErr := s.Snapshot(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if view.Session == nil || view.Session.State != model.StateFocus {
		return nil, nil
	}

	var lists []model.BlockList
	if _, err := s.get(ctx, repository.KeyBlockLists, &lists); err != nil {
		return nil, apperrors.Internal("failed to read block lists")
	}
	for i := range lists {
		if lists[i].ID == view.Session.List.BlockListID {
			return &lists[i], nil
		}
	}
	return nil, nil
}

// RecordEmergencyAccess counts a pass-through to a blocked site against
// today's stats.
func (s *SessionService) RecordEmergencyAccess(ctx context.Context, site string) ([]model.CycleStat, *apperrors.APIError) {
	if site == "" {
		return nil, apperrors.BadRequest("invalid_site", "site is required")
	}

	now := s.now()
	tx, err := s.kv.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	var stats []model.CycleStat
	if _, err := s.getTx(ctx, tx, repository.KeyStats, &stats); err != nil {
		return nil, apperrors.Internal("failed to read stats")
	}
	stats = recordEmergencyAccess(model.Day(now), site, stats)
	if err := s.kv.SetTx(ctx, tx, repository.KeyStats, stats); err != nil {
		return nil, apperrors.Internal("failed to persist stats")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return stats, nil
}

// normalizeExpiredTx applies the transition owed by a passed deadline:
// prep -> focus, focus -> break (with its accrual), break -> none. The check
// runs against the freshly read session inside the caller's transaction, so
// a deadline already applied by the other observer is a no-op here. Unknown
// state values follow the focus path.
func (s *SessionService) normalizeExpiredTx(ctx context.Context, tx *sql.Tx, session *model.Session, now time.Time) (*model.Session, error) {
	if session == nil || !session.Expired(now.UnixMilli()) {
		return session, nil
	}

	switch session.State {
	case model.StatePrep:
		session = enterFocus(session, now.UnixMilli())
		if err := s.kv.SetTx(ctx, tx, repository.KeyActiveSession, session); err != nil {
			return nil, err
		}
		return session, nil

	case model.StateBreak:
		if err := s.kv.DeleteTx(ctx, tx, repository.KeyActiveSession); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		nowMillis := now.UnixMilli()
		session.State = model.StateBreak
		session.StartTime = nowMillis
		session.EndTime = nowMillis + session.List.BreakDurationMillis()
		if err := s.kv.SetTx(ctx, tx, repository.KeyActiveSession, session); err != nil {
			return nil, err
		}
		if err := s.accrueTx(ctx, tx, now, model.PlantAlive); err != nil {
			return nil, err
		}
		return session, nil
	}
}

// accrueTx appends the plant and bumps today's stat for one completion
// (alive) or interruption (withered), inside the caller's transaction.
func (s *SessionService) accrueTx(ctx context.Context, tx *sql.Tx, now time.Time, status string) error {
	today := model.Day(now)

	var garden []model.GardenPlant
	if _, err := s.getTx(ctx, tx, repository.KeyGarden, &garden); err != nil {
		return err
	}
	garden = append(garden, plantFor(now.UnixMilli(), today, status, garden))
	if err := s.kv.SetTx(ctx, tx, repository.KeyGarden, garden); err != nil {
		return err
	}

	var stats []model.CycleStat
	if _, err := s.getTx(ctx, tx, repository.KeyStats, &stats); err != nil {
		return err
	}
	if status == model.PlantAlive {
		stats = recordCompletion(today, stats)
	} else {
		stats = recordInterruption(today, stats)
	}
	return s.kv.SetTx(ctx, tx, repository.KeyStats, stats)
}

func enterFocus(session *model.Session, nowMillis int64) *model.Session {
	session.State = model.StateFocus
	session.StartTime = nowMillis
	session.EndTime = nowMillis + session.List.FocusDurationMillis()
	return session
}

// syncAlarm keeps the wake-up deadline aligned with the session that was just
// committed: armed at its endTime while one exists, cancelled otherwise.
func (s *SessionService) syncAlarm(session *model.Session) {
	if session != nil {
		s.sched.Schedule(alarm.FocusTimer, session.EndTime)
	} else {
		s.sched.Cancel(alarm.FocusTimer)
	}
}

func (s *SessionService) sessionTx(ctx context.Context, tx *sql.Tx) (*model.Session, error) {
	var session model.Session
	found, err := s.getTx(ctx, tx, repository.KeyActiveSession, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &session, nil
}

func (s *SessionService) loadSettings(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()
	if _, err := s.get(ctx, repository.KeySettings, &settings); err != nil {
		log.Printf("load settings: %v", err)
	}
	return settings
}

func (s *SessionService) getTx(ctx context.Context, tx *sql.Tx, key string, out interface{}) (bool, error) {
	raw, err := s.kv.GetTx(ctx, tx, key)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *SessionService) get(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *SessionService) toView(session *model.Session, now time.Time) SessionView {
	view := SessionView{State: model.StateNone, ServerTime: now.UnixMilli()}
	if session == nil {
		return view
	}

	view.Session = session
	view.State = session.State
	remaining := session.EndTime - now.UnixMilli()
	if remaining < 0 {
		remaining = 0
	}
	view.RemainingSeconds = int((remaining + 500) / 1000)
	return view
}
