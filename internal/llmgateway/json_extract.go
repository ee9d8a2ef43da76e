package llmgateway

import "strings"

// extractJSON finds the first fenced ```json block in content and returns
// its contents. Grounded on original_source/src/utils/llm.py's
// extract_json_from_response. Returns ok=false if no fence is found.
func extractJSON(content string) (string, bool) {
	const fence = "```json"
	start := strings.Index(content, fence)
	if start == -1 {
		return "", false
	}
	rest := content[start+len(fence):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
