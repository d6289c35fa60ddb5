//go:build !linux

package sink

import "github.com/gordonklaus/portaudio"

// initPortAudio initializes PortAudio. CoreAudio does not print backend
// noise, so there is nothing to suppress.
func initPortAudio() error {
	return portaudio.Initialize()
}
