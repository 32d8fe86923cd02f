package classify

import "github.com/factlens/backend/internal/analysis"

// promptSpec is the fixed prompt contract for one content kind. Keeping both
// prompts as data lets the contract be tested without a network call.
type promptSpec struct {
	system     string
	userPrefix string
}

const textSystemPrompt = `You are a world-class fact-checking assistant. Analyze the provided news text. Your primary goal is to provide a neutral, factual analysis and generate a search query that can be used to find verification sources.
1. Identify the main claims as an array of strings.
2. Assess the likelihood of the news being fake (boolean).
3. Determine political bias and emotional tone.
4. Identify potential logical fallacies and rate the level of sensationalism.
5. CRITICAL: Generate a concise, neutral web search query (as 'searchQuery') that would find reputable sources to verify the main claims.
6. Return a single JSON object with the specified structure. DO NOT include sources.
{
    "isLikelyFake": boolean,
    "confidence": number (0-100),
    "analysis": string,
    "mainClaims": array of strings,
    "bias": string,
    "tone": string,
    "logicalFallacies": array of strings,
    "sensationalism": string,
    "searchQuery": string
}`

const imageSystemPrompt = `You are a world-class fact-checking assistant. Analyze the provided news image. Your primary goal is to provide a neutral, factual analysis and generate a search query that can be used to find verification sources.
1. Extract all text from the image.
2. Identify the main claims as an array of strings.
3. Assess the likelihood of the news being fake (boolean).
4. Determine political bias and emotional tone.
5. Identify potential logical fallacies and rate the level of sensationalism.
6. CRITICAL: Generate a concise, neutral web search query (as 'searchQuery') that would find reputable sources to verify the main claims.
7. Return a single JSON object with the specified structure. DO NOT include sources.
{
    "isLikelyFake": boolean,
    "confidence": number (0-100),
    "analysis": string,
    "extractedText": string,
    "mainClaims": array of strings,
    "bias": string,
    "tone": string,
    "logicalFallacies": array of strings,
    "sensationalism": string,
    "searchQuery": string
}`

var prompts = map[analysis.ContentKind]promptSpec{
	analysis.KindText: {
		system:     textSystemPrompt,
		userPrefix: "Analyze this news text for potential misinformation:",
	},
	analysis.KindImage: {
		system:     imageSystemPrompt,
		userPrefix: "Analyze this news image for potential misinformation:",
	},
}

// PromptFor exposes the prompt contract for a content kind.
func PromptFor(kind analysis.ContentKind) (system, userPrefix string, ok bool) {
	spec, ok := prompts[kind]
	return spec.system, spec.userPrefix, ok
}
