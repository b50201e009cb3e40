package mood

import "time"

// Observation is one emotion sample published by an external tagger,
// typically the webcam client posting its dominant facial emotion.
type Observation struct {
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}
