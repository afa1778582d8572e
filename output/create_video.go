package output

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/icza/mjpeg"
)

// CreateTimelapseVideo assembles rendered composite frames (oldest first) into
// an MJPEG AVI. Frame dimensions are taken from the first image; all frames of
// a timelapse share the composite grid, so they match.
func CreateTimelapseVideo(imagePaths []string, outputPath string, fps int) error {
	if len(imagePaths) == 0 {
		return errors.New("no frames given for timelapse")
	}
	if fps <= 0 {
		fps = 2
	}
	if !strings.Contains(outputPath, ".avi") {
		outputPath += ".avi"
	}

	firstFile, err := os.Open(imagePaths[0])
	if err != nil {
		return err
	}
	img, _, err := image.Decode(firstFile)
	firstFile.Close()
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	width := int32(bounds.Dx())
	height := int32(bounds.Dy())

	writer, err := mjpeg.New(outputPath, width, height, int32(fps))
	if err != nil {
		return err
	}
	defer writer.Close()

	for _, path := range imagePaths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
		if err != nil {
			return err
		}

		err = writer.AddFrame(buf.Bytes())
		if err != nil {
			return err
		}
	}

	return nil
}
