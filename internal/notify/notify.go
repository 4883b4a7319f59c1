// Package notify declares the notification and audio side channel the engine
// drives when a deadline fires. Rendering and playback belong to the platform
// surface; the engine only issues best-effort commands through these
// interfaces.
package notify

import "log"

type Notifier interface {
	Notify(title, message string)
}

type Player interface {
	PlaySound(url string)
	StopMusic()
}

// LogNotifier and LogPlayer stand in when no platform surface is attached.

type LogNotifier struct{}

func (LogNotifier) Notify(title, message string) {
	log.Printf("notification: %s: %s", title, message)
}

type LogPlayer struct{}

func (LogPlayer) PlaySound(url string) {
	log.Printf("play sound: %s", url)
}

func (LogPlayer) StopMusic() {
	log.Print("stop music")
}
