package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"
)

// DurationFunc reports the playback length of a media file.
type DurationFunc func(ctx context.Context, path string) (time.Duration, error)

// Duration asks ffprobe for the container duration of path.
func Duration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseDuration(out)
}

type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseDuration extracts format.duration from ffprobe JSON output.
func ParseDuration(data []byte) (time.Duration, error) {
	var raw ffprobeFormat
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	seconds, err := strconv.ParseFloat(raw.Format.Duration, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("ffprobe reported no usable duration %q", raw.Format.Duration)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// FormatDuration renders "12.3s" below a minute and "m:ss" otherwise.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
