package formschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentsCatalogue(t *testing.T) {
	var ids []string
	for _, a := range Agents() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"pagina_vendas", "criativo", "ganchos", "mini_vsl", "promessas", "quiz", "estrutura_invisivel"}, ids)

	quiz, ok := LookupAgent("quiz")
	require.True(t, ok)
	assert.True(t, quiz.Disabled)

	hooks, ok := LookupAgent("ganchos")
	require.True(t, ok)
	assert.True(t, hooks.HookOnly)
	assert.Equal(t, 1, hooks.Cost)

	_, ok = LookupAgent("missing")
	assert.False(t, ok)
}

func TestAgentOutputFormat(t *testing.T) {
	vsl, _ := LookupAgent("mini_vsl")
	assert.Equal(t, "vsl", vsl.OutputFormat(FormData{}))
	assert.Equal(t, "sequencia_emails", vsl.OutputFormat(FormData{"canal_principal": "sequencia_emails"}))
}

func TestValidateAgentForm(t *testing.T) {
	pv, _ := LookupAgent("pagina_vendas")

	t.Run("missing selects and essentials", func(t *testing.T) {
		errs := ValidateAgentForm(pv, FormData{"negocio_nome": ""})
		assert.Equal(t, FieldErrors{
			"profissional_nome": "Nome do Profissional/Marca é obrigatório",
			"oferta_nome":       "Nome da Oferta/Produto é obrigatório",
			"publico_descricao": "Descrição do Público-Alvo é obrigatório",
			"metodologia_base":  "Metodologia Base é obrigatório",
			"gatilho_principal": "Gatilho Principal é obrigatório",
		}, errs)
	})

	t.Run("complete", func(t *testing.T) {
		errs := ValidateAgentForm(pv, FormData{
			"profissional_nome": "Dra. Ana",
			"oferta_nome":       "Consulta",
			"publico_descricao": "Mães",
			"metodologia_base":  "rmbc",
			"gatilho_principal": "escassez",
		})
		assert.Nil(t, errs)
	})

	t.Run("agent-only fields are not checked", func(t *testing.T) {
		cr, _ := LookupAgent("criativo")
		errs := ValidateAgentForm(cr, FormData{
			"profissional_nome": "Dra. Ana",
			"oferta_nome":       "Consulta",
			"publico_descricao": "Mães",
			"gatilho_principal": "escassez",
			"tom_de_voz":        "direto",
			"estilo_linguagem":  "jovem",
		})
		assert.Nil(t, errs)
	})
}

func TestValidateInvisibleStructure(t *testing.T) {
	inv, _ := LookupAgent(AgentInvisibleStructure)

	errs := ValidateAgentForm(inv, FormData{"copy_concorrente": "   "})
	require.Len(t, errs, 1)
	assert.Equal(t, "Copy do concorrente é obrigatória", errs.Error())

	assert.Nil(t, ValidateAgentForm(inv, FormData{"copy_concorrente": "Compre agora"}))
}
