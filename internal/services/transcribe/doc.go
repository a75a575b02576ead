// Package transcribe runs an external speech-to-text CLI over short audio
// samples. Any whisper-style binary works: the client feeds it a WAV path
// and reads the transcript from stdout or from the .txt file the tool
// writes next to the input.
package transcribe
