// Package games holds design notes for the games emcee can host.
package games

// An AI MC hosts the party: players talk to it (out loud, via a speech
// front-end, or typed), and it runs the whole game from introductions
// through challenges
// Players introduce themselves one at a time; the newest joiner says "ready"
// when they're set, and the game starts once at least two players are all
// ready
// Once started, the MC challenges players in the order they joined,
// advancing one seat per reply, wrapping around
// Mods (drinking game, trivia, charades, ...) tune the style of challenges;
// the client re-sends its enabled set whenever a checkbox changes

// Implementation details:
// - One session per /party/:sessionid URL, share via QR code
// - Replies stream over plain chunked HTTP; a stop button aborts mid-reply
// - Spectators watch over a websocket (chunks + game state)
// - The MC's memory of who's playing lives server-side; the transcript
//   lives client-side and is re-sent each turn

// Known rough edges:
// - Name detection is "last word of the message"; fine for "I'm Alice",
//   fooled by plenty else. Swap the classifier when this grates.
// - The MC is advisory, not a referee: it nudges turn order but never
//   rejects an answer
