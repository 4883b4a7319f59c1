package model

// Session states. StatePaused is part of the wire enum for forward
// compatibility but no transition ever enters it.
const (
	StateNone   = "none"
	StatePrep   = "prep"
	StateFocus  = "focus"
	StateBreak  = "break"
	StatePaused = "paused"
)

const (
	PrepDurationMillis   = 60 * 1000
	ExtendDurationMillis = 15 * 60 * 1000
)

type FocusList struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FocusMinutes int    `json:"focusMinutes"`
	BreakMinutes int    `json:"breakMinutes"`
	BlockListID  string `json:"blockListId"`
}

func (l FocusList) Valid() bool {
	return l.FocusMinutes > 0 && l.BreakMinutes > 0
}

func (l FocusList) FocusDurationMillis() int64 {
	return int64(l.FocusMinutes) * 60 * 1000
}

func (l FocusList) BreakDurationMillis() int64 {
	return int64(l.BreakMinutes) * 60 * 1000
}

// Session is the single active focus/break run. List is an embedded copy of
// the originating FocusList, so editing or deleting the list definition cannot
// corrupt a running session. StartTime and EndTime are epoch milliseconds;
// EndTime is always derived as StartTime plus the duration of the current
// state, never stored independently.
type Session struct {
	List      FocusList `json:"list"`
	State     string    `json:"state"`
	StartTime int64     `json:"startTime"`
	EndTime   int64     `json:"endTime"`
}

// Expired reports whether the session's deadline has passed. Transitions are
// driven by this wall-clock comparison rather than elapsed ticks, so the
// machine tolerates arbitrarily long process suspension.
func (s *Session) Expired(nowMillis int64) bool {
	return nowMillis >= s.EndTime
}
