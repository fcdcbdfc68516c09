package app

import "fmt"

// Status renders the HUD status line.
func Status(tick int, paused, settled bool, tps int) string {
	state := "running"
	switch {
	case settled:
		state = "settled"
	case paused:
		state = "paused"
	}
	return fmt.Sprintf("%s  tick %d  %d tps", state, tick, tps)
}

type settler interface {
	Settled() bool
}

type ticker interface {
	Ticks() int
}
