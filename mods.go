/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// Mod is an optional rule toggle altering the style and content of
// the host's challenges. The catalog is static; clients keep their
// own enabled set and re-send it as a "Mods updated" system message
// whenever it changes.
type Mod struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// modsUpdatedPrefix marks a system message as a mod-state directive
// rather than a conversation turn. Format:
//
//	Mods updated. Enabled mods: drinking_game, trivia_master
const modsUpdatedPrefix = "Mods updated"

var modCatalog = []Mod{
	{ID: "drinking_game", Name: "Drinking Game", Enabled: true},
	{ID: "exercise_challenges", Name: "Add Exercise Challenges"},
	{ID: "add_water", Name: "Add Water"},
	{ID: "tongue_twisters", Name: "Add Tongue Twisters"},
	{ID: "food_challenges", Name: "Add Food Challenges"},
	{ID: "easy_ai", Name: "Easy-going AI (Easy Challenges)"},
	{ID: "hard_ai", Name: "Hard AI (Difficult Challenges)"},
	{ID: "inquisitive_ai", Name: "Inquisitive AI (Customized Games)"},
	{ID: "truth_or_dare", Name: "Truth or Dare"},
	{ID: "karaoke_challenges", Name: "Karaoke Challenges"},
	{ID: "movie_quotes", Name: "Movie Quote Challenges"},
	{ID: "dance_offs", Name: "Dance-Off Challenges"},
	{ID: "trivia_master", Name: "Trivia Master"},
	{ID: "would_you_rather", Name: "Would You Rather"},
	{ID: "impressions", Name: "Celebrity Impressions"},
	{ID: "charades", Name: "Charades"},
	{ID: "storytelling", Name: "Collaborative Storytelling"},
	{ID: "riddles", Name: "Riddles and Brain Teasers"},
	{ID: "accent_challenge", Name: "Accent Challenge"},
	{ID: "lip_sync_battles", Name: "Lip Sync Battles"},
	{ID: "dare_devil", Name: "Dare Devil (Risky Challenges)"},
	{ID: "rapid_fire", Name: "Rapid Fire Questions"},
	{ID: "memory_game", Name: "Memory Game Challenges"},
	{ID: "physical_comedy", Name: "Physical Comedy Challenges"},
	{ID: "pun_master", Name: "Pun Master"},
	{ID: "emoji_translator", Name: "Emoji Translator"},
	{ID: "reverse_charades", Name: "Reverse Charades"},
	{ID: "musical_challenges", Name: "Musical Challenges"},
	{ID: "blindfolded_tasks", Name: "Blindfolded Tasks"},
	{ID: "team_challenges", Name: "Team Challenges"},
	{ID: "debate_club", Name: "Impromptu Debate Club"},
	{ID: "time_travel", Name: "Time Travel Scenarios"},
	{ID: "silent_challenge", Name: "Silent Challenge"},
	{ID: "compliment_battle", Name: "Compliment Battle"},
	{ID: "roast_master", Name: "Roast Master (Friendly Roasts)"},
	{ID: "accent_roulette", Name: "Accent Roulette"},
	{ID: "lyric_challenge", Name: "Finish the Lyric Challenge"},
	{ID: "mime_time", Name: "Mime Time"},
	{ID: "tongue_twister_race", Name: "Tongue Twister Race"},
	{ID: "fictional_scenarios", Name: "Fictional Scenarios"},
	{ID: "celebrity_hot_seat", Name: "Celebrity Hot Seat"},
	{ID: "rhythm_challenge", Name: "Rhythm Challenge"},
	{ID: "word_association", Name: "Rapid Word Association"},
	{ID: "art_challenge", Name: "60-Second Art Challenge"},
	{ID: "sports_commentary", Name: "Sports Commentary"},
	{ID: "magic_show", Name: "Impromptu Magic Show"},
	{ID: "fashion_show", Name: "Impromptu Fashion Show"},
	{ID: "commercial_break", Name: "Create a Commercial"},
	{ID: "animal_impressions", Name: "Animal Impressions"},
	{ID: "superhero_scenarios", Name: "Superhero Scenarios"},
	{ID: "whisper_challenge", Name: "Whisper Challenge"},
	{ID: "news_anchor", Name: "Fake News Anchor"},
	{ID: "slow_motion", Name: "Slow Motion Challenge"},
	{ID: "poetry_slam", Name: "Impromptu Poetry Slam"},
	{ID: "voice_acting", Name: "Voice Acting Challenge"},
	{ID: "human_knot", Name: "Human Knot Challenge"},
	{ID: "balloon_challenge", Name: "Balloon Challenge"},
	{ID: "paper_airplane", Name: "Paper Airplane Contest"},
}

// defaultEnabledModIDs returns the IDs enabled out of the box, used
// whenever a conversation carries no mod directive yet.
func defaultEnabledModIDs() []string {
	ids := make([]string, 0, 1)
	for _, m := range modCatalog {
		if m.Enabled {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// parseModsDirective extracts the enabled-mod ID list from a mod
// directive. The payload is everything after the final ": ",
// comma-space-separated. Returns nil if text is not a directive.
func parseModsDirective(text string) []string {
	if !strings.HasPrefix(text, modsUpdatedPrefix) {
		return nil
	}

	idx := strings.LastIndex(text, ": ")
	if idx < 0 {
		return nil
	}
	return strings.Split(text[idx+2:], ", ")
}

// enabledModsFrom scans a conversation for the newest mod directive
// and derives the enabled set from it, falling back to the catalog
// defaults when no directive has been seen.
func enabledModsFrom(messages []Message) []string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != roleSystem {
			continue
		}
		if ids := parseModsDirective(messages[i].Content); ids != nil {
			return ids
		}
	}
	return defaultEnabledModIDs()
}

func serveModCatalog(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(modCatalog); err != nil {
			errs <- err

			return
		}
	}
}
