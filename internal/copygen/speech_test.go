package copygen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "palavra"
	}
	return strings.Join(w, " ")
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t ", 0},
		{"simple", "um dois três", 3},
		{"irregular spacing", "  um\n\ndois\tTrês  ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordCount(tt.text))
		})
	}
}

func TestSpeechSeconds(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{0, 0},
		{7, 2.8},
		{25, 10},
		{150, 60},
		{151, 60.4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SpeechSeconds(tt.words), "words=%d", tt.words)
	}
}

func TestFitToDuration(t *testing.T) {
	t.Run("fits unchanged", func(t *testing.T) {
		text := words(10)
		assert.Equal(t, text, FitToDuration(text, 4))
	})

	t.Run("truncates proportionally", func(t *testing.T) {
		got := FitToDuration(words(30), 6)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.Equal(t, 15, WordCount(strings.TrimSuffix(got, "...")))
	})

	t.Run("never grows", func(t *testing.T) {
		for _, secs := range []float64{0.5, 1, 3, 7.5, 20} {
			got := FitToDuration(words(40), secs)
			assert.LessOrEqual(t, WordCount(strings.TrimSuffix(got, "...")), 40)
		}
	})

	t.Run("zero target keeps nothing", func(t *testing.T) {
		assert.Equal(t, "...", FitToDuration(words(5), 0))
	})

	t.Run("text without words unchanged", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\n\t"} {
			for _, secs := range []float64{0, -1, 10} {
				assert.Equal(t, text, FitToDuration(text, secs), "text %q seconds %v", text, secs)
			}
		}
	})
}

func TestFitCopy(t *testing.T) {
	cp := Copy{Hook: words(10), Body: words(100), CTA: words(20)}

	t.Run("over budget splits 10/70/20", func(t *testing.T) {
		got := FitCopy(cp, 30)
		assert.Equal(t, 7, WordCount(strings.TrimSuffix(got.Hook, "...")))
		assert.Equal(t, 52, WordCount(strings.TrimSuffix(got.Body, "...")))
		assert.Equal(t, 15, WordCount(strings.TrimSuffix(got.CTA, "...")))
	})

	t.Run("within budget unchanged", func(t *testing.T) {
		assert.Equal(t, cp, FitCopy(cp, 60))
	})

	t.Run("no duration unchanged", func(t *testing.T) {
		assert.Equal(t, cp, FitCopy(cp, 0))
	})
}
