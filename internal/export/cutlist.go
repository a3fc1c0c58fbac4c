package export

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CutList is the YAML export document.
type CutList struct {
	Title     string  `yaml:"title"`
	FrameRate float64 `yaml:"frame_rate"`
	Duration  float64 `yaml:"duration"`
	Clips     []Clip  `yaml:"clips"`
}

func NewCutList(clips []Clip, title string, frameRate float64) CutList {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	duration := clipsDuration(clips)
	if clips == nil {
		clips = []Clip{}
	}
	return CutList{Title: title, FrameRate: frameRate, Duration: duration, Clips: clips}
}

// GenerateCutList renders clips as a YAML cut list.
func GenerateCutList(clips []Clip, title string, frameRate float64) ([]byte, error) {
	out, err := yaml.Marshal(NewCutList(clips, title, frameRate))
	if err != nil {
		return nil, fmt.Errorf("encode cut list: %w", err)
	}
	return out, nil
}

// ParseCutList reads a document produced by GenerateCutList.
func ParseCutList(data []byte) (CutList, error) {
	var list CutList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return CutList{}, fmt.Errorf("decode cut list: %w", err)
	}
	return list, nil
}
