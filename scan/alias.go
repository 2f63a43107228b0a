package scan

import "strings"

// Common surname expansions by initial. "Seth D." fans out to full-name
// candidates before search, since review platforms rarely show full names.
var surnameMap = map[string][]string{
	"D": {"Doria", "Daniels", "Davidson", "Davis", "Donohue", "Dunn", "Dalton"},
	"P": {"Potash", "Patterson", "Phillips", "Powell", "Parker", "Peterson"},
	"B": {"Brown", "Baker", "Bell", "Bennett", "Brooks", "Butler"},
	"S": {"Schraier", "Smith", "Scott", "Stewart", "Sullivan", "Sanders"},
	"M": {"Miller", "Moore", "Martin", "Martinez", "Murphy", "Mitchell"},
}

// ExpandVariants generates search variants for an alias. The original alias
// is always first; "First X." forms expand through the surname map, and
// handle-style variants cover social platforms. The result is de-duplicated
// but otherwise order-preserving so query budgets hit likelier names first.
func ExpandVariants(alias string) []string {
	variants := []string{alias}

	parts := strings.Fields(strings.TrimSpace(alias))
	if len(parts) == 2 && strings.HasSuffix(parts[1], ".") {
		first := parts[0]
		initial := strings.ToUpper(strings.TrimSuffix(parts[1], "."))
		for _, surname := range surnameMap[initial] {
			variants = append(variants,
				first+" "+surname,
				strings.ToLower(first)+strings.ToLower(surname),
				"@"+strings.ToLower(first)+strings.ToLower(surname),
			)
		}
	}

	base := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(alias, ".", ""), " ", ""))
	variants = append(variants,
		"@"+base,
		base,
		alias+" blogger",
		alias+" writer",
		alias+" reviewer",
	)

	seen := make(map[string]bool, len(variants))
	var out []string
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
