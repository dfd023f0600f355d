package receipt

import "strings"

// DefaultModelCandidates Gemini 模型嘗試順序：2.5 flash 系列優先，再退回 1.5 系列
var DefaultModelCandidates = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-001",
	"models/gemini-2.5-flash",
	"models/gemini-2.5-flash-001",
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash-001",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro",
}

// BuildCandidates 有覆寫值時放在最前面，並移除清單中相同的項目
func BuildCandidates(override string, base []string) []string {
	override = strings.TrimSpace(override)

	out := make([]string, 0, len(base)+1)
	if override != "" {
		out = append(out, override)
	}
	for _, model := range base {
		if model == override {
			continue
		}
		out = append(out, model)
	}
	return out
}
