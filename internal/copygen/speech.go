package copygen

import (
	"math"
	"strings"
)

// WordCount counts whitespace-delimited words in the text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SpeechSeconds estimates how long it takes to read words aloud at the
// catalog's speaking rate, rounded to one decimal.
func (c *Catalog) SpeechSeconds(words int) float64 {
	seconds := float64(words) / float64(c.SpeechWPM) * 60
	return math.Round(seconds*10) / 10
}

// FitToDuration truncates text so it can be spoken within seconds. Text that
// already fits is returned unchanged; truncated text ends with "...". The
// word count never grows.
func (c *Catalog) FitToDuration(text string, seconds float64) string {
	current := WordCount(text)
	if current == 0 || c.SpeechSeconds(current) <= seconds {
		return text
	}

	target := math.Floor(seconds / 60 * float64(c.SpeechWPM))
	words := strings.Fields(text)
	keep := int(math.Floor(float64(len(words)) * target / float64(current)))
	if keep < 0 {
		keep = 0
	}
	return strings.Join(words[:keep], " ") + "..."
}

// FitCopy trims a copy that runs longer than seconds, giving the hook 10%,
// the body 70% and the call-to-action 20% of the time. A copy that fits, or
// a non-positive duration, is returned unchanged.
func (c *Catalog) FitCopy(cp Copy, seconds int) Copy {
	if seconds <= 0 {
		return cp
	}
	total := WordCount(cp.Hook + " " + cp.Body + " " + cp.CTA)
	if float64(total)/float64(c.SpeechWPM)*60 <= float64(seconds) {
		return cp
	}
	d := float64(seconds)
	return Copy{
		Hook: c.FitToDuration(cp.Hook, d*0.1),
		Body: c.FitToDuration(cp.Body, d*0.7),
		CTA:  c.FitToDuration(cp.CTA, d*0.2),
	}
}

// SpeechSeconds estimates speaking time using the embedded catalog.
func SpeechSeconds(words int) float64 { return catalog.SpeechSeconds(words) }

// FitToDuration truncates text using the embedded catalog.
func FitToDuration(text string, seconds float64) string {
	return catalog.FitToDuration(text, seconds)
}

// FitCopy trims a copy to a duration using the embedded catalog.
func FitCopy(cp Copy, seconds int) Copy { return catalog.FitCopy(cp, seconds) }
