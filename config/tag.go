package config

import (
	"fmt"
	"strings"
)

// ModelTag makes a model name safe for file names: "deepseek-r1:1.5b" -> "deepseek-r1_1p5b".
func ModelTag(modelName string) string {
	return strings.NewReplacer(":", "_", ".", "p").Replace(modelName)
}

// RunTag names the files of one (hanzi, model) study run.
func RunTag(hanziTag, modelName string) string {
	return fmt.Sprintf("%s_%s", hanziTag, ModelTag(modelName))
}

// InputFileName is the default batch input for a hanzi tag.
func InputFileName(hanziTag string) string {
	return fmt.Sprintf("luna_%s.txt", hanziTag)
}

// OutputFileName is the default batch output for a run.
func OutputFileName(hanziTag, modelName string) string {
	return fmt.Sprintf("results_luna_%s.txt", RunTag(hanziTag, modelName))
}
