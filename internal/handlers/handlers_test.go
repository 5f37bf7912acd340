package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friday/internal/llm"
	"friday/internal/mood"
	"friday/internal/nlu"
	"friday/internal/reminder"
	"friday/internal/session"
	"friday/internal/weather"
)

type fixedAnalyzer struct{ p mood.Polarity }

func (f fixedAnalyzer) Polarity(string) mood.Polarity { return f.p }

func newSession() *session.Session {
	return session.New(mood.NewEngine(fixedAnalyzer{mood.Neutral}, nil), reminder.NewStore(), nil)
}

type scriptedDialog struct {
	answers []string
	spoken  []string
}

func (d *scriptedDialog) Ask(prompt string, _ time.Duration) string {
	d.spoken = append(d.spoken, prompt)
	if len(d.answers) == 0 {
		return ""
	}
	a := d.answers[0]
	d.answers = d.answers[1:]
	return a
}

func (d *scriptedDialog) Say(text string) { d.spoken = append(d.spoken, text) }

type fakeRunner struct {
	started [][]string
	ran     [][]string
	output  string
	err     error
}

func (r *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	r.ran = append(r.ran, append([]string{name}, args...))
	return r.output, r.err
}

func (r *fakeRunner) Start(name string, args ...string) error {
	r.started = append(r.started, append([]string{name}, args...))
	return r.err
}

type fakeTagger struct{ people []string }

func (f fakeTagger) ContentTokens(text string) []string { return strings.Fields(text) }
func (f fakeTagger) People(string) []string             { return f.people }

type fakeWiki struct {
	summary string
	err     error
	queries []string
}

func (f *fakeWiki) Summary(query string, _ int) (string, error) {
	f.queries = append(f.queries, query)
	return f.summary, f.err
}

func TestStaticAndClockHandlers(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := NewRegistry(Services{Now: func() time.Time { return now }})
	s := newSession()
	ctx := context.Background()

	assert.Equal(t, "Hello! How can I help you?", r.Dispatch(ctx, nlu.Greeting, s, "hello"))
	assert.Equal(t, "Goodbye!", r.Dispatch(ctx, nlu.Exit, s, "bye"))
	assert.Equal(t, "The time is 09:26:53", r.Dispatch(ctx, nlu.Time, s, "what time is it"))
	assert.Equal(t, "Today's date is March 14, 2026", r.Dispatch(ctx, nlu.Date, s, "what's the date"))
}

func TestMoodHandlerSwitchesPersona(t *testing.T) {
	r := NewRegistry(Services{})
	s := newSession()

	got := r.Dispatch(context.Background(), nlu.Mood, s, "be funny please")
	assert.Equal(t, "My personality is now funny.", got)
	assert.Equal(t, mood.Funny, s.Mood.State())
}

func TestGreetFriendPrefersTaggerEntities(t *testing.T) {
	r := NewRegistry(Services{Tagger: fakeTagger{people: []string{"John"}}})
	got := r.Dispatch(context.Background(), nlu.GreetFriend, newSession(), "say hello to my friend john")
	assert.Equal(t, "Hey John! How are you doing today?", got)
}

func TestGreetFriendFallsBackToWordAfterFriend(t *testing.T) {
	r := NewRegistry(Services{Tagger: fakeTagger{}})
	got := r.Dispatch(context.Background(), nlu.GreetFriend, newSession(), "greet my friend bob")
	assert.Equal(t, "Hey Bob! How are you doing today?", got)
}

func TestGreetFriendFallsBackToTitleCase(t *testing.T) {
	r := NewRegistry(Services{Tagger: fakeTagger{}})
	got := r.Dispatch(context.Background(), nlu.GreetFriend, newSession(), "pass my greetings to Alice")
	assert.Equal(t, "Hey Alice! How are you doing today?", got)

	got = r.Dispatch(context.Background(), nlu.GreetFriend, newSession(), "greet somebody")
	assert.Equal(t, "Hello! Who am I greeting?", got)
}

func TestSystemHandlerLaunchesAndQueries(t *testing.T) {
	runner := &fakeRunner{output: "192.168.1.7 10.0.0.3"}
	r := NewRegistry(Services{Runner: runner})
	s := newSession()
	ctx := context.Background()

	assert.Equal(t, "Opening Firefox.", r.Dispatch(ctx, nlu.System, s, "open firefox"))
	require.Len(t, runner.started, 1)
	assert.Equal(t, []string{"firefox"}, runner.started[0])

	assert.Equal(t, "Volume increased.", r.Dispatch(ctx, nlu.System, s, "volume up"))
	require.Len(t, runner.ran, 1)
	assert.Equal(t, []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"}, runner.ran[0])

	assert.Equal(t, "Your IP address is 192.168.1.7.", r.Dispatch(ctx, nlu.System, s, "what is my ip"))

	assert.Equal(t, "System command not recognized.", r.Dispatch(ctx, nlu.System, s, "open the pod bay doors"))
}

func TestSystemHandlerReportsLaunchFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("not installed")}
	r := NewRegistry(Services{Runner: runner})

	got := r.Dispatch(context.Background(), nlu.System, newSession(), "open firefox")
	assert.Equal(t, "Couldn't run that: not installed", got)
}

func TestFileHandlerFolderLifecycle(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	r := NewRegistry(Services{})
	s := newSession()
	ctx := context.Background()

	assert.Equal(t, "Created folder projects.", r.Dispatch(ctx, nlu.File, s, "create folder projects"))
	assert.DirExists(t, filepath.Join(dir, "projects"))

	got := r.Dispatch(ctx, nlu.File, s, "please list my files")
	assert.Contains(t, got, "projects")

	assert.Equal(t, "Deleted folder projects.", r.Dispatch(ctx, nlu.File, s, "delete folder projects"))
	assert.NoDirExists(t, filepath.Join(dir, "projects"))
}

func TestFileHandlerFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "budget-2026.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))

	r := NewRegistry(Services{SearchRoot: root})
	got := r.Dispatch(context.Background(), nlu.File, newSession(), "find my budget file")
	assert.Contains(t, got, "I found 1 files matching budget")
	assert.Contains(t, got, "budget-2026.txt")

	got = r.Dispatch(context.Background(), nlu.File, newSession(), "find file nonexistent")
	assert.Equal(t, "I couldn't find any file matching nonexistent.", got)
}

func TestWeatherHandlerAsksForCity(t *testing.T) {
	var gotCity string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"name":"Oslo","weather":[{"description":"light snow"}],"main":{"temp":-3.2,"feels_like":-8.1,"humidity":86}}`)
	}))
	defer srv.Close()

	dialog := &scriptedDialog{answers: []string{"Oslo"}}
	r := NewRegistry(Services{Weather: weather.NewWithBaseURL("key", srv.URL), Dialog: dialog})

	got := r.Dispatch(context.Background(), nlu.Weather, newSession(), "what's the weather")
	assert.Equal(t, "Oslo", gotCity)
	assert.Contains(t, got, "light snow")
	require.NotEmpty(t, dialog.spoken)
	assert.Equal(t, "Which city would you like the weather for?", dialog.spoken[0])
}

func TestWeatherHandlerFallsBackToDefaultCity(t *testing.T) {
	var gotCity string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"name":"Guntur","weather":[{"description":"clear sky"}],"main":{"temp":31,"feels_like":34,"humidity":60}}`)
	}))
	defer srv.Close()

	dialog := &scriptedDialog{} // silent user
	r := NewRegistry(Services{Weather: weather.NewWithBaseURL("key", srv.URL), Dialog: dialog})

	got := r.Dispatch(context.Background(), nlu.Weather, newSession(), "weather please")
	assert.Equal(t, "Guntur", gotCity)
	assert.Contains(t, got, "clear sky")
	assert.Contains(t, dialog.spoken, "I didn't catch that. Using default city Guntur.")
}

func TestWikipediaHandlerStripsTriggerWords(t *testing.T) {
	wiki := &fakeWiki{summary: "Albert Einstein was a theoretical physicist."}
	r := NewRegistry(Services{Wiki: wiki})

	got := r.Dispatch(context.Background(), nlu.Wikipedia, newSession(), "tell me about albert einstein")
	assert.Equal(t, "Albert Einstein was a theoretical physicist.", got)
	require.Len(t, wiki.queries, 1)
	assert.Equal(t, "albert einstein", wiki.queries[0])
}

func TestWikipediaHandlerMissingArticle(t *testing.T) {
	wiki := &fakeWiki{err: errors.New("page not found")}
	r := NewRegistry(Services{Wiki: wiki})

	got := r.Dispatch(context.Background(), nlu.Wikipedia, newSession(), "who is zzyzx qwerty")
	assert.Equal(t, "I couldn't find anything on Wikipedia about zzyzx qwerty.", got)
}

func TestSearchHandlerReadsTopResult(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Go is an open source programming language.</p><p>It was designed at Google.</p></body></html>`)
	}))
	defer page.Close()

	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><a class="result__a" href="%s">The Go Programming Language</a></body></html>`, page.URL)
	}))
	defer ddg.Close()

	var opened []string
	client := NewSearchClientWithBaseURL(ddg.URL, func(u string) error {
		opened = append(opened, u)
		return nil
	})
	dialog := &scriptedDialog{}
	r := NewRegistry(Services{Search: client, Dialog: dialog})

	got := r.Dispatch(context.Background(), nlu.Search, newSession(), "search golang")
	assert.Equal(t, "Go is an open source programming language. It was designed at Google.", got)
	assert.Equal(t, []string{page.URL}, opened)
	require.NotEmpty(t, dialog.spoken)
	assert.Contains(t, dialog.spoken[0], "The Go Programming Language")
}

func TestSearchHandlerNoResults(t *testing.T) {
	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>no results</body></html>`)
	}))
	defer ddg.Close()

	r := NewRegistry(Services{Search: NewSearchClientWithBaseURL(ddg.URL, nil)})
	got := r.Dispatch(context.Background(), nlu.Search, newSession(), "search zzyzx")
	assert.Equal(t, "The search for zzyzx failed.", got)
}

func TestResolveRedirectUnwrapsDuckDuckGo(t *testing.T) {
	href := "//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&rut=abc"
	assert.Equal(t, "https://go.dev/doc/", resolveRedirect(href))
	assert.Equal(t, "https://example.com/x", resolveRedirect("https://example.com/x"))
}

func TestFunHandlerJokeAndTrivia(t *testing.T) {
	joke := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"type":"twopart","setup":"Why do Go programmers carry lifejackets?","delivery":"Because they don't like panics."}`)
	}))
	defer joke.Close()

	trivia := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[{"question":"What does &quot;CPU&quot; stand for?","correct_answer":"Central Processing Unit","incorrect_answers":["Core Power Unit","Central Program Utility"]}]}`)
	}))
	defer trivia.Close()

	client := NewFunClientWithBaseURLs(joke.URL, trivia.URL, func(int) int { return 0 })
	r := NewRegistry(Services{Fun: client})
	s := newSession()
	ctx := context.Background()

	got := r.Dispatch(ctx, nlu.Fun, s, "tell me a joke")
	assert.Equal(t, "Why do Go programmers carry lifejackets? ... Because they don't like panics.", got)

	got = r.Dispatch(ctx, nlu.Fun, s, "ask me a trivia question")
	assert.Contains(t, got, `What does "CPU" stand for?`)
	assert.Contains(t, got, "The answer is Central Processing Unit.")
	assert.NotContains(t, got, "&quot;")
}

func TestGameHandlerFullRound(t *testing.T) {
	r := NewRegistry(Services{RandInt: func(int) int { return 11 }}) // target 12
	s := newSession()
	ctx := context.Background()

	got := r.Dispatch(ctx, nlu.Game, s, "let's play number guess")
	assert.Contains(t, got, "between 1 and 20")
	assert.True(t, s.Game.Active)

	assert.Contains(t, r.Dispatch(ctx, nlu.Game, s, "guess five"), "Too low")
	assert.Contains(t, r.Dispatch(ctx, nlu.Game, s, "guess 15"), "Too high")
	got = r.Dispatch(ctx, nlu.Game, s, "guess twelve")
	assert.Contains(t, got, "Correct")
	assert.False(t, s.Game.Active)
}

func TestGameHandlerRejectsUnparsableGuess(t *testing.T) {
	r := NewRegistry(Services{RandInt: func(int) int { return 4 }})
	s := newSession()
	ctx := context.Background()

	r.Dispatch(ctx, nlu.Game, s, "number guess")
	got := r.Dispatch(ctx, nlu.Game, s, "guess banana")
	assert.Equal(t, "Please guess a number, like: guess 7", got)
	assert.True(t, s.Game.Active)
}

func TestReminderHandlerRoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	dialog := &scriptedDialog{answers: []string{"water the plants", "ten"}}
	r := NewRegistry(Services{Dialog: dialog, Now: func() time.Time { return now }})
	s := newSession()

	got := r.Dispatch(context.Background(), nlu.Reminder, s, "set a reminder")
	assert.Equal(t, "Reminder set for 10 minutes from now: water the plants", got)
	assert.Empty(t, s.Reminders.Due(now.Add(9*time.Minute)))
	due := s.Reminders.Due(now.Add(10 * time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, "water the plants", due[0].Task)
}

func TestChatFallbackKeepsHistory(t *testing.T) {
	mock := &llm.Mock{Reply: "Cats sleep around sixteen hours a day."}
	r := NewRegistry(Services{Chat: mock})
	s := newSession()

	got := r.Dispatch(context.Background(), nlu.Unknown, s, "how long do cats sleep")
	assert.Equal(t, "Cats sleep around sixteen hours a day.", got)

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, llm.Message{Role: "user", Content: "how long do cats sleep"}, h[0])
	assert.Equal(t, llm.Message{Role: "assistant", Content: "Cats sleep around sixteen hours a day."}, h[1])
}

func TestChatFallbackWithoutModel(t *testing.T) {
	r := NewRegistry(Services{})
	got := r.Dispatch(context.Background(), nlu.Unknown, newSession(), "mumble mumble")
	assert.Equal(t, "Hmm, I didn't understand that. Could you rephrase?", got)
}

func TestChatFallbackPersonaFollowsMood(t *testing.T) {
	mock := &llm.Mock{Reply: "ok"}
	r := NewRegistry(Services{Chat: mock})
	s := newSession()
	s.Mood.Set(mood.Sarcastic)

	r.Dispatch(context.Background(), nlu.Unknown, s, "whatever")
	require.Len(t, mock.Systems, 1)
	assert.Contains(t, mock.Systems[0], "sarcastic")
}

func TestKnowledgeHandlerUnconfigured(t *testing.T) {
	r := NewRegistry(Services{})
	got := r.Dispatch(context.Background(), nlu.Knowledge, newSession(), "what do you know about the project")
	assert.Equal(t, "The knowledge base isn't configured.", got)
}
