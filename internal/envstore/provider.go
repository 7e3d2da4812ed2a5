package envstore

import "strings"

// Provider is the result of mapping a model name to the service that hosts it.
type Provider struct {
	Name           string
	AcceptableKeys []string
}

type providerPrefix struct {
	prefix   string
	provider Provider
}

var (
	openAI     = Provider{Name: "OpenAI", AcceptableKeys: []string{"OPENAI_API_KEY"}}
	anthropic  = Provider{Name: "Anthropic", AcceptableKeys: []string{"ANTHROPIC_API_KEY", "ANTROPIC_API_KEY"}}
	google     = Provider{Name: "Google", AcceptableKeys: []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}}
	mistral    = Provider{Name: "Mistral", AcceptableKeys: []string{"MISTRAL_API_KEY"}}
	cohere     = Provider{Name: "Cohere", AcceptableKeys: []string{"COHERE_API_KEY"}}
	perplexity = Provider{Name: "Perplexity", AcceptableKeys: []string{"PERPLEXITY_API_KEY", "PPLX_API_KEY"}}
	deepseek   = Provider{Name: "DeepSeek", AcceptableKeys: []string{"DEEPSEEK_API_KEY"}}
	xai        = Provider{Name: "xAI", AcceptableKeys: []string{"XAI_API_KEY", "GROK_API_KEY"}}
)

// providerTable is ordered; the first matching prefix wins.
// ANTROPIC_API_KEY is an accepted alias for projects that shipped the typo.
var providerTable = []providerPrefix{
	{"gpt-", openAI},
	{"chatgpt-", openAI},
	{"o1", openAI},
	{"o3", openAI},
	{"o4-", openAI},
	{"text-embedding-", openAI},
	{"dall-e", openAI},
	{"claude-", anthropic},
	{"gemini-", google},
	{"text-bison", google},
	{"mistral-", mistral},
	{"codestral-", mistral},
	{"open-mistral", mistral},
	{"command-", cohere},
	{"embed-", cohere},
	{"sonar", perplexity},
	{"pplx-", perplexity},
	{"deepseek-", deepseek},
	{"grok-", xai},
}

// InferProvider returns the provider for a model name, or nil when the
// prefix is not recognized.
func InferProvider(model string) *Provider {
	m := strings.ToLower(strings.TrimSpace(model))
	if m == "" {
		return nil
	}
	for _, entry := range providerTable {
		if strings.HasPrefix(m, entry.prefix) {
			p := entry.provider
			p.AcceptableKeys = append([]string(nil), entry.provider.AcceptableKeys...)
			return &p
		}
	}
	return nil
}
