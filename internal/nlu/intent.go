// Package nlu turns a transcribed utterance into one intent tag.
//
// Classification is deliberately dumb: an ordered table of keyword sets,
// first match wins. The order of the table is the tie-break policy, so
// the table is a slice, not a map.
package nlu

// Tag identifies one category of user request.
type Tag string

const (
	Greeting    Tag = "greeting"
	Exit        Tag = "exit"
	GreetFriend Tag = "greet_friend"
	Weather     Tag = "weather"
	Time        Tag = "time"
	Date        Tag = "date"
	System      Tag = "system_command"
	File        Tag = "file"
	Wikipedia   Tag = "wikipedia"
	Search      Tag = "search"
	Fun         Tag = "fun"
	Game        Tag = "game"
	Mood        Tag = "mood"
	Sleep       Tag = "sleep"
	Reminder    Tag = "reminder"
	Knowledge   Tag = "knowledge"
	Unknown     Tag = "unknown"
)

// Entry binds a tag to the keywords that trigger it.
type Entry struct {
	Tag      Tag
	Keywords []string
}

// Table is an ordered intent list. When an utterance carries keywords
// from several entries the earliest entry wins; that is the whole
// disambiguation policy.
type Table []Entry

// DefaultTable returns the stock intent table. Multi-word keywords like
// "tell me about" never match the token set and are kept only so the
// handlers can strip them from queries.
func DefaultTable() Table {
	return Table{
		{Greeting, []string{"hello", "hi", "hey", "morning"}},
		{Exit, []string{"bye", "quit", "exit"}},
		{GreetFriend, []string{"friend"}},
		{Weather, []string{"weather", "forecast", "temperature"}},
		{Time, []string{"time", "clock"}},
		{Date, []string{"date", "day", "today"}},
		{System, []string{"open", "launch", "run", "shutdown", "restart", "volume", "brightness", "ip"}},
		{File, []string{"file", "folder", "directory", "create", "delete", "list"}},
		{Wikipedia, []string{"wikipedia", "who", "what", "tell me about"}},
		{Search, []string{"search", "google", "look up", "find"}},
		{Fun, []string{"joke", "fun", "trivia", "question"}},
		{Game, []string{"play", "game", "guess"}},
		{Mood, []string{"serious", "funny", "sarcastic", "empathetic", "mood"}},
		{Sleep, []string{"sleep", "standby"}},
		{Reminder, []string{"remind", "reminder", "note"}},
		{Knowledge, []string{"ingest", "knowledge", "memorize"}},
	}
}

// Keywords returns the keyword set for tag, or nil when the table has
// no such entry.
func (t Table) Keywords(tag Tag) []string {
	for _, e := range t {
		if e.Tag == tag {
			return e.Keywords
		}
	}
	return nil
}
