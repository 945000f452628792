package ai

import "strings"

// ExtractScript strips markdown formatting from a model reply, returning the
// bare AppleScript source. Models are instructed not to use code fences, but
// some wrap the code anyway.
func ExtractScript(content string) string {
	content = strings.TrimSpace(content)
	if !strings.Contains(content, "```") {
		return content
	}

	start := strings.Index(content, "```")
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		// Unterminated fence: drop the fence markers and keep the body.
		return strings.TrimSpace(strings.ReplaceAll(content, "```", ""))
	}

	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 0 {
		tag := strings.ToLower(strings.TrimSpace(lines[0]))
		if tag == "applescript" || tag == "osascript" || tag == "" {
			lines = lines[1:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
