package receipt

import "pantry-chef/internal/pkg/common"

// Comparison 手動清單與模型清單的比較
type Comparison struct {
	Agreed     []string `json:"agreed"`
	ManualOnly []string `json:"manualOnly"`
	LLMOnly    []string `json:"llmOnly"`
	Conflicts  []string `json:"conflicts"`
}

// Compare 以小寫集合比較兩份清單，保留首次出現順序
func Compare(manual, llm []string) Comparison {
	manualSet := common.UniqueNormalized(manual)
	llmSet := common.UniqueNormalized(llm)

	inLLM := make(map[string]bool, len(llmSet))
	for _, n := range llmSet {
		inLLM[n] = true
	}
	inManual := make(map[string]bool, len(manualSet))
	for _, n := range manualSet {
		inManual[n] = true
	}

	c := Comparison{
		Agreed:     []string{},
		ManualOnly: []string{},
		LLMOnly:    []string{},
		Conflicts:  []string{},
	}
	for _, n := range manualSet {
		if inLLM[n] {
			c.Agreed = append(c.Agreed, n)
		} else {
			c.ManualOnly = append(c.ManualOnly, n)
		}
	}
	for _, n := range llmSet {
		if !inManual[n] {
			c.LLMOnly = append(c.LLMOnly, n)
		}
	}
	return c
}
