package formschema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nouscopy/nouscopy/internal/copygen"
)

func TestToBrief(t *testing.T) {
	form := FormData{
		"profissional_nome":   "Dra. Ana",
		"tempo_experiencia":   "10",
		"resultado_principal": "500 pacientes",
		"diferencial":         "Protocolo",
		"publico_descricao":   "Mães",
		"nivel_consciencia":   "sabe_problema",
		"gatilho_principal":   "escassez",
		"metodologia_base":    "rmbc",
		"canal_principal":     "titulos_google_ads",
		"vsl_duracao_minutos": "2",
		"estilo_linguagem":    "simples_direto",
		"oferta_nome":         "Consulta",
	}

	b := ToBrief(form)
	assert.Equal(t, "Dra. Ana", b.ProfessionalName)
	assert.Equal(t, "10", b.YearsExperience)
	assert.Equal(t, "consciente-problema", b.Awareness)
	assert.Equal(t, "inveja", b.Trigger)
	assert.Equal(t, "rmbc", b.Methodology)
	assert.Equal(t, "google-ads-pesquisa", b.Platform)
	assert.Equal(t, 120, b.DurationSeconds)
	assert.Equal(t, "informativo", b.Density)
	assert.Equal(t, "Consulta", b.Extra["oferta_nome"])
}

func TestToBriefFallbacks(t *testing.T) {
	b := ToBrief(FormData{
		"nivel_consciencia": "custom",
		"gatilho_principal": "desconhecido",
		"canal_principal":   "pagina_vendas",
	})
	assert.Equal(t, "custom", b.Awareness)
	assert.Equal(t, "gula", b.Trigger)
	assert.Equal(t, "pagina_vendas", b.Platform)
	assert.Equal(t, 30, b.DurationSeconds)
	assert.Equal(t, "minimalista", b.Density)

	assert.Equal(t, "gula", ToBrief(FormData{}).Trigger)
}

func TestFromBrief(t *testing.T) {
	b := copygen.Brief{
		ProfessionalName: "Dra. Ana",
		Awareness:        "totalmente-consciente",
		Trigger:          "ira",
		Platform:         "instagram-reels",
		Extra:            map[string]any{"oferta_nome": "Consulta", "gatilho_principal": "novidade"},
	}

	form := FromBrief(b)
	assert.Equal(t, "Dra. Ana", form["profissional_nome"])
	assert.Equal(t, "pronto_comprar", form["nivel_consciencia"])
	assert.Equal(t, "urgencia", form["gatilho_principal"])
	assert.Equal(t, "post_redes_sociais", form["canal_principal"])
	assert.Equal(t, "Consulta", form["oferta_nome"])
}

func TestFromBriefFallbacks(t *testing.T) {
	form := FromBrief(copygen.Brief{Trigger: "x", Platform: "google-ads-display", Awareness: "y"})
	assert.Equal(t, "curiosidade", form["gatilho_principal"])
	assert.Equal(t, "vsl", form["canal_principal"])
	assert.Equal(t, "y", form["nivel_consciencia"])
}
