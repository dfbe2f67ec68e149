package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Prompt templates handed to a chat assistant; its JSON reply feeds
// import-plan / import-recipes.
const (
	planPromptTemplate = `Atue como um Nutricionista Sênior. Objetivo: Gerar um JSON válido com um plano mensal (4 semanas). SEU PERFIL: [PERFIL] REGRAS RIGOROSAS: 1. "ingredients": Use a Quantidade DIÁRIA ("q_daily") APENAS em 'g' (gramas) ou 'ml' (mililitros). NUNCA use 'kg' ou 'l'. 2. Categorias: "cafe", "almoco", "lanche", "jantar". 3. Mercado: "carnes", "horti", "mercearia", "outros". ESTRUTURA JSON (Responda APENAS ISSO): { "library": [{ "id": "rec_01", "name": "Nome", "cat": "almoco", "icon": "fa-drumstick-bite", "ingredients": [{"n": "Item", "q_daily": 200, "u": "g", "cat": "carnes"}], "steps": ["Passo 1"] }], "planner": { "1": { "cafe": "rec_01" } }, "themes": { "1": "Nome..." } }`

	recipePromptTemplate = `Atue como Nutricionista. Gere um JSON Array com [QTD] receitas do tipo: [PERFIL]. REGRAS: Quantidades DIÁRIAS (q_daily) em 'g'/'ml'. ESTRUTURA: [{ "id": "rec_01", "name": "Nome", "cat": "cafe", "icon": "fa-mug-hot", "ingredients": [{"n": "Item", "q_daily": 200, "u": "g", "cat": "mercearia"}], "steps": ["Passo 1"] }]`
)

func init() {
	var profile string
	var count int

	promptCmd := &cobra.Command{
		Use:   "prompt (plan|recipes)",
		Short: "Print the assistant prompt whose reply feeds the import commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out string
			switch args[0] {
			case "plan":
				out = strings.ReplaceAll(planPromptTemplate, "[PERFIL]", profile)
			case "recipes":
				out = strings.ReplaceAll(recipePromptTemplate, "[PERFIL]", profile)
				out = strings.ReplaceAll(out, "[QTD]", strconv.Itoa(count))
			default:
				return fmt.Errorf("unknown prompt %q, want plan or recipes", args[0])
			}
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
	promptCmd.Flags().StringVarP(&profile, "profile", "p", "", "Dietary profile text substituted into the prompt")
	promptCmd.Flags().IntVarP(&count, "count", "c", 5, "Number of recipes to request (recipes prompt only)")
	rootCmd.AddCommand(promptCmd)
}
