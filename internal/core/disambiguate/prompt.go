package disambiguate

import (
	"fmt"
	"strings"
)

// reasoningPrompt asks for free-form reasoning about which readings of hanzi
// fit the bracketed phrase.
func reasoningPrompt(hanzi, bracketed string, candidates []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("漢字「%s」是一個多音字，有以下讀音：%s。", hanzi, strings.Join(candidates, "、")))
	b.WriteString("多數情況下，多音字在一個短語中只有一個合適的讀音，但少數情況下也可能有多個讀音。")
	b.WriteString(fmt.Sprintf("請仔細思考，在短語「%s」中，被方括號括起來的漢字「%s」可能讀作哪個拼音。", bracketed, hanzi))
	b.WriteString("請寫下你的推理過程。")
	return b.String()
}

// summaryPrompt asks for the answer as structured data.
func summaryPrompt(hanzi string) string {
	return fmt.Sprintf(
		"請使用 JSON 格式總結你的回答。用 `results` 列出你為「%s」選擇的拼音（最多 %d 個），不要加註音調；用 `reason` 說明你這樣選擇的理由。",
		hanzi, MaxResults,
	)
}
