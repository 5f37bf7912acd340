package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDialog replays canned replies and records everything spoken.
type scriptedDialog struct {
	replies []string
	spoken  []string
}

func (d *scriptedDialog) Ask(prompt string, _ time.Duration) string {
	d.spoken = append(d.spoken, prompt)
	if len(d.replies) == 0 {
		return ""
	}
	r := d.replies[0]
	d.replies = d.replies[1:]
	return r
}

func (d *scriptedDialog) Say(text string) { d.spoken = append(d.spoken, text) }

func TestCaptureRoundTrip(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	flow := NewFlow(store, 3, func() time.Time { return base })

	d := &scriptedDialog{replies: []string{"call mom", "ten"}}
	resp := flow.Capture(d)

	assert.Equal(t, "Reminder set for 10 minutes from now: call mom", resp)
	require.Equal(t, 1, store.Len())

	// Not due yet.
	assert.Empty(t, store.Due(base.Add(9*time.Minute)))

	due := store.Due(base.Add(10 * time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, "call mom", due[0].Task)

	// A second poll must not re-fire.
	assert.Empty(t, store.Due(base.Add(11*time.Minute)))
	assert.Equal(t, 0, store.Len())
}

func TestCaptureAbortsOnSilentTask(t *testing.T) {
	store := NewStore()
	flow := NewFlow(store, 3, nil)

	d := &scriptedDialog{} // silence on every question
	resp := flow.Capture(d)

	assert.Equal(t, "I didn't catch that. Reminder not set.", resp)
	assert.Equal(t, 0, store.Len())
}

func TestCaptureRetriesDuration(t *testing.T) {
	store := NewStore()
	flow := NewFlow(store, 3, nil)

	// Two unusable answers, then a good one.
	d := &scriptedDialog{replies: []string{"walk the dog", "", "banana", "fifteen"}}
	resp := flow.Capture(d)

	assert.Equal(t, "Reminder set for 15 minutes from now: walk the dog", resp)
	assert.Equal(t, 1, store.Len())
	// The re-prompt asks the user to speak up.
	assert.Contains(t, d.spoken[2], "louder")
}

func TestCaptureGivesUpAfterAllRetries(t *testing.T) {
	store := NewStore()
	flow := NewFlow(store, 2, nil)

	d := &scriptedDialog{replies: []string{"water plants", "banana", "potato"}}
	resp := flow.Capture(d)

	assert.Equal(t, "I couldn't hear the time after multiple attempts. Reminder not set.", resp)
	assert.Equal(t, 0, store.Len())
}

func TestCaptureRejectsNonPositiveMinutes(t *testing.T) {
	store := NewStore()
	flow := NewFlow(store, 3, nil)

	d := &scriptedDialog{replies: []string{"stretch", "zero"}}
	resp := flow.Capture(d)

	assert.Contains(t, resp, "valid number of minutes")
	assert.Contains(t, resp, "Reminder not set.")
	assert.Equal(t, 0, store.Len())
}

func TestDueOrderIndependence(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.Add(Entry{FireAt: base.Add(5 * time.Minute), Task: "late"})
	store.Add(Entry{FireAt: base.Add(1 * time.Minute), Task: "early"})

	due := store.Due(base.Add(2 * time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, "early", due[0].Task)
	assert.Equal(t, 1, store.Len())
}
