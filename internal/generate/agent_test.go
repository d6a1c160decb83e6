package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouscopy/nouscopy/internal/ai"
	"github.com/nouscopy/nouscopy/internal/formschema"
)

func creativeForm() formschema.FormData {
	return formschema.FormData{
		"profissional_nome": "Dra. Ana",
		"oferta_nome":       "Consulta",
		"publico_descricao": "Mães de crianças autistas",
		"gatilho_principal": "escassez",
		"tom_de_voz":        "direto",
	}
}

func hooksForm() formschema.FormData {
	form := creativeForm()
	form["nivel_consciencia"] = "sabe_problema"
	form["curiosidade_ou_dor"] = "dor"
	return form
}

func TestGenerateAgentTemplates(t *testing.T) {
	h := &fakeHistory{}
	svc := NewService(h, Options{})

	res, err := svc.GenerateAgent(context.Background(), "user-1", "criativo", creativeForm(), 3)
	require.NoError(t, err)

	assert.Equal(t, "criativo", res.AgentID)
	assert.Equal(t, "Criativo", res.AgentName)
	assert.Equal(t, 3, res.Requested)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Copies, 3)
	for _, c := range res.Copies {
		assert.Equal(t, "anuncio_meta_ads", c.Format)
		assert.False(t, c.GeneratedWithAI)
		assert.NotEmpty(t, c.Hook)
		assert.NotEmpty(t, c.Body)
		assert.NotEmpty(t, c.CTA)
		assert.NotNil(t, c.Strategy)
	}
	assert.Equal(t, []string{"h1", "h2", "h3"}, []string{res.Copies[0].HistoryID, res.Copies[1].HistoryID, res.Copies[2].HistoryID})

	require.Len(t, h.entries, 3)
	e := h.entries[0]
	assert.Equal(t, "Consulta", e.Title)
	assert.Equal(t, "Não especificado", e.Platform)
	assert.Equal(t, "Não especificado", e.Method)
	assert.Equal(t, "criativo", e.AgentID)
	assert.Contains(t, string(e.FormData), `"oferta_nome":"Consulta"`)
}

func TestGenerateAgentPlatformAndMethod(t *testing.T) {
	h := &fakeHistory{}
	form := creativeForm()
	form["canal_principal"] = "post_redes_sociais"
	form["metodologia_base"] = "rmbc"

	res, err := NewService(h, Options{}).GenerateAgent(context.Background(), "user-1", "criativo", form, 1)
	require.NoError(t, err)
	assert.Equal(t, "post_redes_sociais", res.Copies[0].Format)

	require.Len(t, h.entries, 1)
	assert.Equal(t, "post_redes_sociais", h.entries[0].Platform)
	assert.Equal(t, "rmbc", h.entries[0].Method)
}

func TestGenerateAgentQuantityClamp(t *testing.T) {
	svc := NewService(&fakeHistory{}, Options{MaxQuantity: 2})

	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{"zero becomes one", 0, 1},
		{"negative becomes one", -4, 1},
		{"within range", 2, 2},
		{"above max is capped", 99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GenerateAgent(context.Background(), "user-1", "criativo", creativeForm(), tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Requested)
			assert.Len(t, res.Copies, tt.want)
		})
	}
	assert.Equal(t, DefaultMaxQuantity, NewService(nil, Options{}).MaxQuantity())
}

func TestGenerateAgentHookOnly(t *testing.T) {
	t.Run("templates", func(t *testing.T) {
		res, err := NewService(&fakeHistory{}, Options{}).GenerateAgent(context.Background(), "user-1", "ganchos", hooksForm(), 1)
		require.NoError(t, err)
		c := res.Copies[0]
		assert.NotEmpty(t, c.Hook)
		assert.Empty(t, c.Body)
		assert.Empty(t, c.CTA)
		assert.Equal(t, c.Hook, c.Text)
	})

	t.Run("ai", func(t *testing.T) {
		fp := &fakeProvider{}
		svc := NewService(&fakeHistory{}, Options{Writer: ai.NewWriter(fp, "")})
		res, err := svc.GenerateAgent(context.Background(), "user-1", "ganchos", hooksForm(), 2)
		require.NoError(t, err)
		require.Len(t, res.Copies, 2)
		assert.Equal(t, "texto da IA", res.Copies[0].Hook)
		assert.True(t, res.Copies[0].GeneratedWithAI)
		assert.Equal(t, 2, fp.calls, "one hook prompt per copy")
	})
}

func TestGenerateAgentSkipsFailedAttempts(t *testing.T) {
	h := &fakeHistory{}
	fp := &fakeProvider{err: ai.ErrRateLimited, failHooks: 1}
	svc := NewService(h, Options{Writer: ai.NewWriter(fp, "")})

	res, err := svc.GenerateAgent(context.Background(), "user-1", "criativo", creativeForm(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, res.Copies, 2)
	assert.Len(t, h.entries, 2)
	assert.Equal(t, 7, fp.calls, "failed hook plus two full copies")
}

func TestGenerateAgentNothingGenerated(t *testing.T) {
	h := &fakeHistory{}
	fp := &fakeProvider{err: ai.ErrInvalidKey, failAll: true}
	svc := NewService(h, Options{Writer: ai.NewWriter(fp, "")})

	_, err := svc.GenerateAgent(context.Background(), "user-1", "criativo", creativeForm(), 2)
	require.ErrorIs(t, err, ErrNothingGenerated)
	assert.ErrorIs(t, err, ai.ErrInvalidKey)
	assert.Empty(t, h.entries)
}

func TestGenerateAgentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(&fakeHistory{}, Options{}).GenerateAgent(ctx, "user-1", "criativo", creativeForm(), 2)
	require.ErrorIs(t, err, ErrNothingGenerated)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAgentInvisibleStructure(t *testing.T) {
	form := formschema.FormData{
		"copy_concorrente":      "Compre agora o curso X",
		"observacoes_adaptacao": "trocar para nutrição",
	}

	t.Run("requires a provider", func(t *testing.T) {
		_, err := NewService(&fakeHistory{}, Options{}).GenerateAgent(context.Background(), "user-1", formschema.AgentInvisibleStructure, form, 1)
		assert.ErrorIs(t, err, ErrAIUnavailable)
	})

	t.Run("adapts competitor copy", func(t *testing.T) {
		h := &fakeHistory{}
		fp := &fakeProvider{reply: "GANCHO: Novo gancho\nCORPO: Novo corpo\nCTA: Novo CTA"}
		svc := NewService(h, Options{Writer: ai.NewWriter(fp, "")})

		res, err := svc.GenerateAgent(context.Background(), "user-1", formschema.AgentInvisibleStructure, form, 1)
		require.NoError(t, err)
		require.Len(t, res.Copies, 1)
		c := res.Copies[0]
		assert.Equal(t, "Novo gancho", c.Hook)
		assert.Equal(t, "Novo corpo", c.Body)
		assert.Equal(t, "Novo CTA", c.CTA)
		assert.Nil(t, c.Strategy)
		assert.Empty(t, c.Format)

		require.Len(t, h.entries, 1)
		assert.Equal(t, "Estrutura Invisível - Copy gerada", h.entries[0].Title)
		assert.Nil(t, h.entries[0].Strategy)
	})
}

func TestGenerateAgentRejectsRequest(t *testing.T) {
	svc := NewService(&fakeHistory{}, Options{})
	ctx := context.Background()

	_, err := svc.GenerateAgent(ctx, "user-1", "missing", creativeForm(), 1)
	assert.ErrorIs(t, err, ErrUnknownAgent)

	_, err = svc.GenerateAgent(ctx, "user-1", "quiz", creativeForm(), 1)
	assert.ErrorIs(t, err, ErrAgentDisabled)

	_, err = svc.GenerateAgent(ctx, "user-1", "criativo", formschema.FormData{}, 1)
	var fe formschema.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "profissional_nome")

	limited := NewService(&fakeHistory{}, Options{Limiter: denyLimiter{}})
	_, err = limited.GenerateAgent(ctx, "user-1", "criativo", creativeForm(), 1)
	assert.ErrorIs(t, err, ErrRateLimited)
}
