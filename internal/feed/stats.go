package feed

import (
	"strings"

	"github.com/betpulse/live-gate/internal/model"
)

// statKeywords maps free-text statistics categories to canonical ones.
// English and Turkish feed labels are both matched.
var statKeywords = []struct {
	category model.StatCategory
	words    []string
}{
	{model.StatShotsOnTarget, []string{"shots on target", "shot on target", "shots on goal", "isabetli sut", "isabetli şut"}},
	{model.StatDangerousAttacks, []string{"dangerous attack", "tehlikeli atak", "tehlikeli hucum", "tehlikeli hücum"}},
	{model.StatPossession, []string{"possession", "ball possession", "topla oynama"}},
}

// NormalizeStatistic extracts one canonical StatLine from a raw upstream
// statistics record {category, homeValue, awayValue}. Values may arrive as
// numbers or numeric strings; anything unparseable counts as 0 for
// threshold sums and sets Present=false for display purposes.
func NormalizeStatistic(raw map[string]any) model.StatLine {
	line := model.StatLine{Category: model.StatOther}
	if raw == nil {
		return line
	}

	label := strings.ToLower(stringAt(raw, "category", "type", "name", "title"))
	for _, group := range statKeywords {
		if containsAny(label, group.words) {
			line.Category = group.category
			break
		}
	}

	home, homeOK := intAt(raw, "home", "homeValue", "home_value")
	away, awayOK := intAt(raw, "away", "awayValue", "away_value")
	line.Home = home
	line.Away = away
	line.Present = homeOK || awayOK
	return line
}

// NormalizeStatistics maps NormalizeStatistic over a raw statistics list.
func NormalizeStatistics(raws []map[string]any) []model.StatLine {
	lines := make([]model.StatLine, 0, len(raws))
	for _, raw := range raws {
		lines = append(lines, NormalizeStatistic(raw))
	}
	return lines
}

// SumStat returns the combined home+away total for one category across all
// lines. Absent lines contribute their zero values.
func SumStat(lines []model.StatLine, category model.StatCategory) int {
	total := 0
	for _, l := range lines {
		if l.Category == category {
			total += l.Home + l.Away
		}
	}
	return total
}
