/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"unicode/utf8"
)

// classifier turns one human utterance into at most one game-state
// mutation. Classification never fails; a message it can't make sense
// of simply mutates nothing.
//
// The default implementation is a deliberately naive token heuristic,
// not a name-entity recognizer. It sits behind this interface so a
// smarter classifier can be dropped in without touching the rest of
// the turn pipeline.
type classifier interface {
	classify(message string, state *GameState)
}

type heuristicClassifier struct{}

// classify applies the lobby heuristics before the game starts, and
// advances the turn pointer on every message once it has.
//
// Lobby rules, mutually exclusive:
//  1. A message containing "ready" (any case) marks the newest joiner
//     as introduced and attempts the game start. Checked first, so
//     "ready" is never mistaken for a player's name.
//  2. Otherwise the last whitespace-delimited token is a candidate
//     name; if longer than one rune and not already on the roster,
//     a new player joins.
//
// A lobby message matching neither rule is a no-op. Post-start, every
// message counts as the current player's response, whatever it says;
// answers are free-form and never validated.
func (heuristicClassifier) classify(message string, state *GameState) {
	if state.Started() {
		state.AdvanceTurn()
		return
	}

	if strings.Contains(strings.ToLower(message), "ready") {
		state.MarkLastIntroducedReady()
		state.TryStartGame()
		return
	}

	fields := strings.Fields(message)
	var candidate string
	if len(fields) > 0 {
		candidate = fields[len(fields)-1]
	}

	if utf8.RuneCountInString(candidate) > 1 && !state.HasPlayer(candidate) {
		_ = state.AddPlayer(candidate)
	}
}
