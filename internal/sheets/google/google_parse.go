package google

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"jard/internal/core"
)

// jsonUnmarshal is a seam for tests.
var jsonUnmarshal = json.Unmarshal

func parseToken(b []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := jsonUnmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	return &tok, nil
}

// parseCategories converts the Categories sheet into entries. Rows with an
// unknown main category are skipped; Active defaults to true.
func parseCategories(values [][]interface{}) ([]core.CategoryEntry, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colItem := indexOf(headers, "Item")
	colMain := indexOf(headers, "Main")
	if colItem == -1 || colMain == -1 {
		missing := make([]string, 0, 2)
		if colItem == -1 {
			missing = append(missing, "Item")
		}
		if colMain == -1 {
			missing = append(missing, "Main")
		}
		return nil, fmt.Errorf("unexpected categories header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	colSub := indexOf(headers, "Sub")
	colOrder := indexOf(headers, "Order")
	colActive := indexOf(headers, "Active")
	colMeals := indexOf(headers, "Meals")

	var out []core.CategoryEntry
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		name := safeGet(row, colItem)
		if name == "" {
			continue
		}
		main, ok := core.ParseMainCategory(safeGet(row, colMain))
		if !ok {
			continue
		}
		e := core.CategoryEntry{
			ItemName:     name,
			MainCategory: main,
			SubCategory:  core.CanonicalSubCategory(safeGet(row, colSub)),
			Active:       true,
		}
		if n, err := strconv.Atoi(safeGet(row, colOrder)); err == nil {
			e.DisplayOrder = n
		}
		if v, ok := parseBool(safeGet(row, colActive)); ok {
			e.Active = v
		}
		if v, ok := parseBool(safeGet(row, colMeals)); ok {
			e.MealsLine = &v
		}
		out = append(out, e)
	}
	return out, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "1", "y":
		return true, true
	case "false", "no", "0", "n":
		return false, true
	}
	return false, false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
