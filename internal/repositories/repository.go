package repositories

import (
	"fmt"
	"strings"
)

func contains(list []string, item string) bool {
	for _, val := range list {
		if strings.EqualFold(val, item) {
			return true
		}
	}
	return false
}

func containsExact(list []string, item string) bool {
	for _, val := range list {
		if val == item {
			return true
		}
	}
	return false
}

// splitFilterValues разбирает значение фильтра вида "1,2,4" (так его собирает ParseFilterFromQuery).
func splitFilterValues(raw interface{}) []string {
	var values []string
	for _, part := range strings.Split(fmt.Sprintf("%v", raw), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, strings.ToUpper(part))
		}
	}
	return values
}
