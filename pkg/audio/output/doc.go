// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Output interface and oto, malgo, ALSA and PortAudio sinks
// Package output provides blocking audio sinks.
//
// Every backend implements Output: Open negotiates the exact format, Start
// begins playback, Write blocks until the device has accepted the buffer and
// Close is idempotent. Open/Start failures wrap ErrSinkUnavailable; Write
// failures wrap ErrSinkBroken.
//
// Backends: oto (default), malgo (miniaudio), alsa (Linux only) and portaudio
// (build with -tags portaudio).
//
// Example:
//
//	out, err := output.New(output.BackendOto, logger)
//	err = out.Open(audio.KeepAliveFormat(44100))
//	err = out.Start()
//	err = out.Write(frame)
package output
