package exif

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

const exifLayout = "2006:01:02 15:04:05"

// ErrNoCaptureDate is returned when a file carries EXIF data but none of the
// date tags parse.
var ErrNoCaptureDate = errors.New("exif capture date not found")

// captureTags are tried in order before falling back to the decoder's own
// DateTime lookup.
var captureTags = []goexif.FieldName{goexif.DateTimeOriginal, goexif.DateTimeDigitized}

// Reader reads capture dates for the preview listing.
type Reader struct{}

func (r Reader) DateTimeOriginal(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer file.Close()

	takenAt, err := CaptureDate(file)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", path, err)
	}
	return takenAt, nil
}

// CaptureDate decodes EXIF from src and returns the first usable date.
func CaptureDate(src io.Reader) (time.Time, error) {
	x, err := goexif.Decode(src)
	if err != nil {
		return time.Time{}, err
	}

	for _, name := range captureTags {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		str, err := tag.StringVal()
		if err != nil {
			continue
		}
		if parsed, err := time.ParseInLocation(exifLayout, str, time.Local); err == nil {
			return parsed, nil
		}
	}

	if parsed, err := x.DateTime(); err == nil {
		return parsed, nil
	}
	return time.Time{}, ErrNoCaptureDate
}
