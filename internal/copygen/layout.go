package copygen

import (
	"fmt"
	"strings"
)

// LayoutKind names the shape a copy is presented in.
type LayoutKind string

const (
	LayoutVideo  LayoutKind = "video"
	LayoutImage  LayoutKind = "image"
	LayoutSearch LayoutKind = "search"
	LayoutPlain  LayoutKind = "plain"
)

const (
	defaultVideoSeconds = 30
	searchHeadlineRunes = 30
	searchDescRunes     = 90
	minimalistHeadline  = 5
	informativeHeadline = 10
	densityMinimalist   = "minimalista"
)

// ScriptRow is one timed line of a video script.
type ScriptRow struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Visual  string `json:"visual"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// VideoScript is a copy laid out as a timed script.
type VideoScript struct {
	DurationSeconds int         `json:"duration_seconds"`
	Rows            []ScriptRow `json:"rows"`
	WordCount       int         `json:"word_count"`
	SpeechSeconds   float64     `json:"speech_seconds"`
	WordsPerMinute  int         `json:"words_per_minute"`
}

// ImageAd is a copy laid out for a static creative.
type ImageAd struct {
	ArtSuggestion string `json:"art_suggestion"`
	Headline      string `json:"headline"`
	Caption       string `json:"caption"`
	CTA           string `json:"cta"`
}

// SearchAd is a copy cut to search-ad field limits.
type SearchAd struct {
	Headline1   string `json:"headline1"`
	Headline2   string `json:"headline2"`
	Description string `json:"description"`
}

// Layout is a copy adapted to its channel, plus the reasoning behind it.
type Layout struct {
	Kind      LayoutKind   `json:"kind"`
	Title     string       `json:"title"`
	Video     *VideoScript `json:"video,omitempty"`
	Image     *ImageAd     `json:"image,omitempty"`
	Search    *SearchAd    `json:"search,omitempty"`
	Rationale []string     `json:"rationale"`
}

// KindFor reports which layout a platform key uses.
func KindFor(platform string) LayoutKind {
	switch {
	case strings.Contains(platform, "video") || platform == "instagram-reels":
		return LayoutVideo
	case platform == "meta-ads-imagem" || platform == "google-ads-display":
		return LayoutImage
	case platform == "google-ads-pesquisa":
		return LayoutSearch
	default:
		return LayoutPlain
	}
}

// Render adapts a copy to the brief's platform.
func (c *Catalog) Render(b Brief, s Strategy, cp Copy) Layout {
	l := Layout{
		Kind:      KindFor(b.Platform),
		Rationale: c.rationale(b, s),
	}

	switch l.Kind {
	case LayoutVideo:
		l.Video = c.videoScript(b, cp)
		l.Title = fmt.Sprintf("ROTEIRO: %d Segundos", l.Video.DurationSeconds)
	case LayoutImage:
		l.Title = "COPY PARA IMAGEM"
		l.Image = imageAd(b, s, cp)
	case LayoutSearch:
		l.Title = "GOOGLE ADS - PESQUISA"
		l.Search = &SearchAd{
			Headline1:   prefix(cp.Hook, searchHeadlineRunes),
			Headline2:   prefix(cp.Body, searchHeadlineRunes),
			Description: prefix(cp.Body+" "+cp.CTA, searchDescRunes),
		}
	default:
		l.Title = "COPY"
	}
	return l
}

func (c *Catalog) videoScript(b Brief, cp Copy) *VideoScript {
	d := b.DurationSeconds
	if d <= 0 {
		d = defaultVideoSeconds
	}
	hookEnd := d * 10 / 100
	bodyEnd := hookEnd + d*80/100

	words := WordCount(cp.Hook + " " + cp.Body + " " + cp.CTA)
	return &VideoScript{
		DurationSeconds: d,
		Rows: []ScriptRow{
			{Start: 0, End: hookEnd, Visual: "Close-up emocional", Section: "GANCHO", Text: cp.Hook},
			{Start: hookEnd, End: bodyEnd, Visual: "Transição: Imagens relacionadas", Section: "CORPO", Text: cp.Body},
			{Start: bodyEnd, End: d, Visual: "CTA + Profissional", Section: "CTA", Text: cp.CTA},
		},
		WordCount:      words,
		SpeechSeconds:  c.SpeechSeconds(words),
		WordsPerMinute: c.SpeechWPM,
	}
}

func imageAd(b Brief, s Strategy, cp Copy) *ImageAd {
	limit := informativeHeadline
	if b.Density == densityMinimalist {
		limit = minimalistHeadline
	}
	words := strings.Split(cp.Hook, " ")
	if len(words) > limit {
		words = words[:limit]
	}

	triggerName := ""
	if s.Trigger != nil {
		triggerName = strings.ToLower(s.Trigger.Name)
	}

	return &ImageAd{
		ArtSuggestion: fmt.Sprintf("Imagem que represente %s com elemento visual relacionado a %s", b.Audience, triggerName),
		Headline:      strings.ToUpper(strings.Join(words, " ")),
		Caption:       cp.Body,
		CTA:           cp.CTA,
	}
}

func (c *Catalog) rationale(b Brief, s Strategy) []string {
	var lines []string
	if t := s.Trigger; t != nil {
		lines = append(lines, fmt.Sprintf("Gatilho Psicológico (%s): %s", t.Name, t.Driver))
	}
	if a := s.Awareness; a != nil {
		lines = append(lines, fmt.Sprintf("Nível de Consciência: %s - %s", a.Name, a.Approach))
	}
	if m, ok := c.Methodology(b.Methodology); ok {
		lines = append(lines, fmt.Sprintf("Metodologia: %s (%s)", m.Name, m.Author))
	}
	lines = append(lines, "Premissa Lógica: "+s.Premise)
	if t := s.Trigger; t != nil {
		lines = append(lines, fmt.Sprintf(
			"A copy ativa o %s através de %s, conectando-se ao ponto de dor do público-alvo e oferecendo uma solução baseada na autoridade de %s anos de experiência.",
			strings.ToLower(t.Name), strings.ToLower(t.Application), b.YearsExperience,
		))
	}
	return lines
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FormatText renders a copy as plain text for the clipboard or export.
func FormatText(cp Copy) string {
	return strings.TrimSpace(fmt.Sprintf("GANCHO: %s\n\nCORPO: %s\n\nCTA: %s", cp.Hook, cp.Body, cp.CTA))
}

// Render adapts a copy using the embedded catalog.
func Render(b Brief, s Strategy, cp Copy) Layout { return catalog.Render(b, s, cp) }
