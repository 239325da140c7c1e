package config

type AI string

const (
	AIGemini AI = "gemini"
	AIOpenAI AI = "openai"
)

type Model string

const (
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"

	ModelGPTV4o     Model = "gpt-4o"
	ModelGPTV4oMini Model = "gpt-4o-mini"
)

func SupportedAIs() []AI {
	return []AI{
		AIGemini,
		AIOpenAI,
	}
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIGemini:
		return []Model{
			ModelGeminiV25Flash,
			ModelGeminiV25Pro,
			ModelGeminiV25FlashLite,
		}
	case AIOpenAI:
		return []Model{
			ModelGPTV4oMini,
			ModelGPTV4o,
		}
	default:
		return []Model{}
	}
}

func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// APIKeyEnvVar names the environment variable read when llm.api_key is empty.
func APIKeyEnvVar(ai AI) string {
	switch ai {
	case AIGemini:
		return "GEMINI_API_KEY"
	case AIOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
