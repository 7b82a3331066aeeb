package verifier

import "strings"

// SystemPrompt frames every verification request.
const SystemPrompt = "You are an expert entity resolution system."

// promptTemplate is the fixed instruction template for a verification
// request. Both serialized record texts are embedded verbatim.
const promptTemplate = `You are an expert in product entity resolution.

Determine whether the following two product records refer to the SAME real-world product.

First product:
%SOURCE%

Second product:
%TARGET%

Rules:
- Answer ONLY with valid JSON
- Do NOT include any extra text
- Decide strictly between "match" or "no_match"

Output format:
{
  "label": "match" or "no_match",
  "confidence": a number between 0 and 1,
  "evidence": [
    "short reason 1",
    "short reason 2"
  ]
}`

// BuildPrompt fills the instruction template with the two serialized
// record texts.
func BuildPrompt(sourceText, targetText string) string {
	replacer := strings.NewReplacer("%SOURCE%", sourceText, "%TARGET%", targetText)
	return replacer.Replace(promptTemplate)
}
