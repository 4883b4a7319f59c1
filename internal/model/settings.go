package model

// SoundNone suppresses the notification sound.
const SoundNone = "none"

// SoundURLs maps notification sound ids to the asset URLs the playback
// surface resolves. Unknown ids fall back to silence.
var SoundURLs = map[string]string{
	"chime": "sounds/chime.mp3",
	"bell":  "sounds/bell.mp3",
	"drop":  "sounds/drop.mp3",
}

// Settings is owned by the view layer; the engine only reads it for
// notification wording and sound choice when a deadline fires.
type Settings struct {
	NotificationTitle    string  `json:"notificationTitle"`
	FocusCompleteMessage string  `json:"focusCompleteMessage"`
	BreakCompleteMessage string  `json:"breakCompleteMessage"`
	SoundID              string  `json:"soundId"`
	MusicEnabled         bool    `json:"musicEnabled"`
	MusicTrack           string  `json:"musicTrack"`
	MusicVolume          float64 `json:"musicVolume"`
}

func DefaultSettings() Settings {
	return Settings{
		NotificationTitle:    "Focus Garden",
		FocusCompleteMessage: "Focus cycle complete! Time to water your plant.",
		BreakCompleteMessage: "Break is over. Ready to get back to it?",
		SoundID:              "chime",
		MusicEnabled:         false,
		MusicTrack:           "",
		MusicVolume:          0.5,
	}
}
