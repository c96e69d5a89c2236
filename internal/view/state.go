package view

import "github.com/0x0BSoD/newsfeed/internal/feedstore"

// State is what a presentation layer should show for a snapshot.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// StateOf prefers content: retained items are shown even when the latest
// refresh failed.
func StateOf(snap feedstore.Snapshot) State {
	switch {
	case len(snap.Items) > 0:
		return StateReady
	case snap.IsRefreshing:
		return StateLoading
	case snap.LastError != "":
		return StateError
	default:
		return StateEmpty
	}
}
