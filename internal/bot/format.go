package bot

import (
	"fmt"
	"strings"

	"pilotage/internal/store"
)

// categoryOrder is the fixed display order; categories outside it are
// appended in encounter order.
var categoryOrder = []string{
	store.CategoryRecovery,
	store.CategoryCore,
	store.CategoryDynamic,
	store.CategoryDenial,
}

// formatTaskList renders the day's tasks grouped by category with
// checkbox-style lines.
func formatTaskList(tasks []store.Task) string {
	if len(tasks) == 0 {
		return "No tasks for today."
	}

	groups := make(map[string][]store.Task)
	var extras []string
	for _, t := range tasks {
		if _, seen := groups[t.Category]; !seen && !isKnownCategory(t.Category) {
			extras = append(extras, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}

	var sb strings.Builder
	sb.WriteString("*Today's tasks:*\n")
	for _, category := range append(append([]string{}, categoryOrder...), extras...) {
		group := groups[category]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s:*\n", category)
		for _, t := range group {
			box := " "
			if t.Completed {
				box = "x"
			}
			fmt.Fprintf(&sb, "  [%s] %d. %s\n", box, t.ID, t.Title)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isKnownCategory(category string) bool {
	for _, known := range categoryOrder {
		if category == known {
			return true
		}
	}
	return false
}
