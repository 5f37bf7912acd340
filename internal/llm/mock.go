package llm

import "context"

// Mock implements Chatter for tests: canned reply, recorded calls, no
// network.
type Mock struct {
	Reply   string
	Err     error
	Systems []string
	Calls   [][]Message
}

func (m *Mock) Chat(_ context.Context, history []Message, system string) (string, error) {
	m.Calls = append(m.Calls, append([]Message(nil), history...))
	m.Systems = append(m.Systems, system)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
