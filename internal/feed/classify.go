// Package feed is the normalization boundary between the upstream
// sports/odds feeds and the rest of the service. Upstream records arrive in
// several shapes (nested type objects, flat strings, English or Turkish
// labels); everything downstream operates only on the canonical model types
// produced here.
//
// All classification functions are total: malformed input degrades to zero
// values or KindOther, never to an error.
package feed

import (
	"strings"

	"github.com/betpulse/live-gate/internal/model"
)

// UnknownScorer is the display fallback for goal events that arrive without
// any player attribution.
const UnknownScorer = "Unknown player"

// kindKeywords maps event kinds to the substrings that identify them in an
// event's type signature. English and Turkish feed labels are both matched.
// Order matters: the first matching group wins, mirroring the priority
// Goal > Card > Penalty > Corner > Offside > the discrete danger kinds.
// Substitution is handled separately before this table (see ClassifyEvent).
var kindKeywords = []struct {
	kind  model.EventKind
	words []string
}{
	{model.KindGoal, []string{"goal", "gol"}},
	{model.KindYellowCard, []string{"card", "kart"}}, // split yellow/red below
	{model.KindPenalty, []string{"penalty", "penalti", "penaltı"}},
	{model.KindCorner, []string{"corner", "korner"}},
	{model.KindOffside, []string{"offside", "ofsayt"}},
	{model.KindFreeKick, []string{"free kick", "freekick", "free-kick", "frikik"}},
	{model.KindShotOnTarget, []string{"shot on target", "shot on goal", "isabetli sut", "isabetli şut"}},
	{model.KindDangerousAttack, []string{"dangerous attack", "dangerous", "tehlikeli"}},
}

var substitutionWords = []string{"substitution", "subst", "sub", "oyuncu degisikligi", "oyuncu değişikliği", "degisiklik", "değişiklik"}

var redCardWords = []string{"red", "kirmizi", "kırmızı", "second yellow", "ikinci sari", "ikinci sarı"}

// ClassifyEvent extracts a canonical MatchEvent from one raw upstream event
// record. It never fails: unrecognized input yields KindOther with
// best-effort fields.
func ClassifyEvent(raw map[string]any) model.MatchEvent {
	ev := model.MatchEvent{Kind: model.KindOther}
	if raw == nil {
		return ev
	}

	if m, ok := intAt(raw, "minute", "time", "elapsed", "match_minute"); ok && m >= 0 {
		ev.Minute = m
	}
	ev.Timestamp = timeAt(raw, "timestamp", "created_at", "time_utc")
	ev.Team = stringAt(raw, "team", "team_name", "side")
	ev.Player = stringAt(raw, "player", "player_name", "scorer")
	ev.PlayerOut = stringAt(raw, "player_out", "playerOut", "player_off", "out")
	ev.PlayerIn = stringAt(raw, "player_in", "playerIn", "player_on", "in")

	sig := typeSignature(raw)

	// Substitution takes priority: explicit player-out/player-in fields mark
	// a substitution regardless of the type text, which elsewhere could match
	// a generic "sub" substring.
	if ev.PlayerOut != "" || ev.PlayerIn != "" || containsAny(sig, substitutionWords) {
		ev.Kind = model.KindSubstitution
		return ev
	}

	for _, group := range kindKeywords {
		if !containsAny(sig, group.words) {
			continue
		}
		ev.Kind = group.kind
		if group.kind == model.KindYellowCard && isRedCard(raw, sig) {
			ev.Kind = model.KindRedCard
		}
		break
	}

	if ev.Kind == model.KindGoal && ev.Player == "" {
		ev.Player = UnknownScorer
	}
	return ev
}

// typeSignature builds the lowercase string the keyword table is matched
// against: the first non-empty of the nested type name, the nested type
// type, a plain string type, the event_type variants, then the name field.
func typeSignature(raw map[string]any) string {
	candidates := []string{
		nestedStringAt(raw, "type", "name"),
		nestedStringAt(raw, "type", "type"),
		stringAt(raw, "type"),
		stringAt(raw, "event_type", "eventType", "event"),
		stringAt(raw, "name"),
	}
	for _, c := range candidates {
		if c != "" {
			return strings.ToLower(c)
		}
	}
	return ""
}

// isRedCard distinguishes red from yellow cards by substring, checking the
// nested detail/card fields as well as the type signature itself.
func isRedCard(raw map[string]any, sig string) bool {
	if containsAny(sig, redCardWords) {
		return true
	}
	detail := strings.ToLower(stringAt(raw, "detail", "card", "card_type", "comment"))
	return detail != "" && containsAny(detail, redCardWords)
}

// ClassifyEvents maps ClassifyEvent over a raw event list, preserving
// upstream order.
func ClassifyEvents(raws []map[string]any) []model.MatchEvent {
	events := make([]model.MatchEvent, 0, len(raws))
	for _, raw := range raws {
		events = append(events, ClassifyEvent(raw))
	}
	return events
}
