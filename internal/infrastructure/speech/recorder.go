package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Recorder captures microphone audio via ffmpeg's avfoundation input,
// producing a 16kHz mono WAV suitable for transcription.
type Recorder struct {
	ffmpegPath string
}

// NewRecorder builds a recorder; ffmpegPath defaults to ffmpeg from PATH.
func NewRecorder(ffmpegPath string) *Recorder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Recorder{ffmpegPath: ffmpegPath}
}

// Available reports whether ffmpeg can be invoked.
func (r *Recorder) Available() bool {
	_, err := exec.LookPath(r.ffmpegPath)
	return err == nil
}

// Record captures the given number of seconds and returns the path of the
// recorded WAV file. The caller removes the file when done.
func (r *Recorder) Record(ctx context.Context, seconds int) (string, error) {
	if seconds <= 0 {
		return "", fmt.Errorf("record duration must be positive, got %d", seconds)
	}
	outputPath := filepath.Join(os.TempDir(), fmt.Sprintf("osai-capture-%d.wav", os.Getpid()))

	// -f avfoundation -i :0 selects the default macOS input device.
	cmd := exec.CommandContext(ctx, r.ffmpegPath,
		"-f", "avfoundation",
		"-i", ":0",
		"-t", strconv.Itoa(seconds),
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg capture failed: %w\noutput: %s", err, string(output))
	}
	return outputPath, nil
}

// Cleanup removes a recorded capture file.
func Cleanup(path string) {
	if filepath.Ext(path) == ".wav" {
		_ = os.Remove(path)
	}
}
