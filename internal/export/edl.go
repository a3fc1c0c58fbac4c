package export

import (
	"fmt"
	"math"
	"strings"
)

const DefaultFrameRate = 30.0

// GenerateEDL renders clips as a CMX 3600 style EDL. Record times come
// from the clips; a non-positive frame rate means DefaultFrameRate.
func GenerateEDL(clips []Clip, title string, frameRate float64) string {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		frameRate = DefaultFrameRate
	}
	fps := int(math.Round(frameRate))

	lines := []string{"TITLE: " + SanitizeName(title, 0)}
	if isDropFrame(frameRate) {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, clip := range clips {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				toTimecode(clip.SourceIn, fps), toTimecode(clip.SourceOut, fps),
				toTimecode(clip.RecordIn, fps), toTimecode(clip.RecordOut, fps)),
			"* FROM CLIP NAME:  "+clip.Name,
		)
		if clip.MediaPath != "" {
			lines = append(lines, "* MEDIA PATH:  "+clip.MediaPath)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func isDropFrame(frameRate float64) bool {
	return math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01
}

// toTimecode formats seconds as HH:MM:SS:FF at fps.
func toTimecode(seconds float64, fps int) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d",
		totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, frames)
}
