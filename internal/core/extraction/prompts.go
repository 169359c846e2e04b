package extraction

// Prompts are the templates used for extraction and domain detection.
// %[1]s is the detected domain, %[2]s the chunk text.
type Prompts struct {
	Extraction string
	Domain     string
}

const defaultExtractionPrompt = `You are an expert knowledge extraction analyst specializing in %[1]s.

Your task is to EXHAUSTIVELY extract knowledge triples from the following text.
Do not summarize. Extract every single meaningful relationship found in the text.
Each triple should follow the format:
(Subject/Head Entity) -> (Relationship/Relation) -> (Object/Tail Entity)

Examples (domain-agnostic):
- "Concept A" -> "causes" -> "Effect B"
- "Entity X" -> "interacts_with" -> "Entity Y"
- "Component ABC" -> "regulates" -> "Process XYZ"
- "Theory 1" -> "contradicts" -> "Theory 2"

Text to analyze:
%[2]s

IMPORTANT: Return ONLY a valid JSON array. No explanations, no markdown, just the JSON array.

Format:
[
  {"head": "entity name", "relation": "relationship type", "tail": "entity name"},
  {"head": "entity name", "relation": "relationship type", "tail": "entity name"}
]

Extract as many meaningful triples as possible. Focus on:
- Entities (concepts, objects, processes, theories, methods relevant to %[1]s)
- Relationships (causes, activates, inhibits, regulates, improves, contradicts, supports, etc.)
- Be specific with entity names (e.g., use "Alzheimer's disease" instead of "the disease")

Return the JSON array now:`

const defaultDomainPrompt = `Read the following text and identify the specific scientific domain or field of study.
Return ONLY the domain name (e.g., "Molecular Biology", "Roman History", "Contract Law").

TEXT PREVIEW:
%s`

// UnknownDomain is the fallback when domain detection fails; the
// extraction prompt still works with it, just less focused.
const UnknownDomain = "Unknown Domain"
