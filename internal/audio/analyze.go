package audio

import (
	"math"
	"time"
)

type Verdict string

const (
	VerdictGood     Verdict = "good"
	VerdictTooShort Verdict = "too_short"
	VerdictTooLong  Verdict = "too_long"
	VerdictTooQuiet Verdict = "too_quiet"
	VerdictTooLoud  Verdict = "too_loud"
)

const (
	minSpoken = 500 * time.Millisecond
	maxSpoken = 3 * time.Second
	quietRMS  = 1000
	loudRMS   = 10000
)

// Feedback is a rough delivery check on a recording. It does not judge
// pronunciation itself.
type Feedback struct {
	Duration time.Duration `json:"duration"`
	RMS      float64       `json:"rms"`
	Length   Verdict       `json:"length"`
	Volume   Verdict       `json:"volume"`
}

// Analyze reports whether the recording was too short or long and too quiet or loud.
func Analyze(clip Clip) Feedback {
	fb := Feedback{Duration: clip.Duration(), RMS: rms(clip.Samples)}
	switch {
	case fb.Duration < minSpoken:
		fb.Length = VerdictTooShort
	case fb.Duration > maxSpoken:
		fb.Length = VerdictTooLong
	default:
		fb.Length = VerdictGood
	}
	switch {
	case fb.RMS < quietRMS:
		fb.Volume = VerdictTooQuiet
	case fb.RMS > loudRMS:
		fb.Volume = VerdictTooLoud
	default:
		fb.Volume = VerdictGood
	}
	return fb
}

var verdictText = map[Verdict]string{
	VerdictTooShort: "Слишком коротко",
	VerdictTooLong:  "Слишком долго",
	VerdictTooQuiet: "Слишком тихо",
	VerdictTooLoud:  "Слишком громко",
}

// Lines renders the feedback for display.
func (f Feedback) Lines() []string {
	length := "Хорошая длительность"
	if text, ok := verdictText[f.Length]; ok {
		length = text
	}
	volume := "Хорошая громкость"
	if text, ok := verdictText[f.Volume]; ok {
		volume = text
	}
	return []string{length, volume}
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
