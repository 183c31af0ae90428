package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/clock"
	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type published struct {
	name    string
	payload any
}

// recorder is a Broadcaster that keeps every published event.
type recorder struct {
	mu     sync.Mutex
	events []published
	inner  *events.Broadcaster
}

func (r *recorder) Publish(name string, payload any) {
	r.mu.Lock()
	r.events = append(r.events, published{name, payload})
	r.mu.Unlock()
	if r.inner != nil {
		r.inner.Publish(name, payload)
	}
}

func (r *recorder) Subscribe(ctx context.Context, init events.Frame) *events.Subscription {
	return r.inner.Subscribe(ctx, init)
}

func (r *recorder) named(name string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *recorder, *clock.FakeClock) {
	t.Helper()
	rec := &recorder{inner: events.NewBroadcaster(testLogger())}
	clk := clock.Fake(epoch)
	return NewStore(rec, clk, testLogger()), rec, clk
}

func status(session, agent, msg string) models.StatusRecord {
	return models.StatusRecord{Agent: agent, Session: session, Message: msg, Timestamp: epoch}
}

func TestGetOrCreateAnnouncesOnce(t *testing.T) {
	s, rec, _ := newTestStore(t)

	a := s.GetOrCreate("s1")
	b := s.GetOrCreate("s1")
	if a != b {
		t.Fatal("GetOrCreate returned a different session for the same id")
	}

	got := rec.named(events.SessionNew)
	if len(got) != 1 {
		t.Fatalf("session-new published %d times, want 1", len(got))
	}
	ref := got[0].payload.(models.SessionRef)
	if ref.ID != "s1" || ref.StartedAt == nil || !ref.StartedAt.Equal(epoch) {
		t.Errorf("session-new payload = %+v", ref)
	}
}

func TestRecordStatusLastWriteWins(t *testing.T) {
	s, rec, _ := newTestStore(t)

	var last models.StatusRecord
	for i := 0; i < 5; i++ {
		last = status("s1", "builder", fmt.Sprintf("step %d", i))
		last.Phase = fmt.Sprintf("%d.1", i)
		last.Status = models.StateWorking
		s.RecordStatus(last, "")
	}

	state, err := s.State("s1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(state.Agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(state.Agents))
	}
	got := state.Agents["builder"]
	if !reflect.DeepEqual(got.StatusRecord, last) {
		t.Errorf("agent entry = %+v, want %+v", got.StatusRecord, last)
	}
	if !got.LastSeen.Equal(last.Timestamp) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, last.Timestamp)
	}
	if n := len(rec.named(events.Status)); n != 5 {
		t.Errorf("status events = %d, want 5", n)
	}
}

func TestRecordStatusSetsProject(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.RecordStatus(status("s1", "a", "hi"), "apollo")
	s.RecordStatus(status("s1", "a", "again"), "")

	state, _ := s.State("s1")
	if state.Project != "apollo" {
		t.Errorf("Project = %q, want apollo", state.Project)
	}
}

func TestLogIsCappedFIFO(t *testing.T) {
	s, _, _ := newTestStore(t)

	for i := 0; i < 600; i++ {
		rec := status("s1", "a", fmt.Sprintf("entry %d", i))
		rec.Timestamp = epoch.Add(time.Duration(i) * time.Second)
		s.RecordStatus(rec, "")
	}

	s.mu.Lock()
	log := s.sessions["s1"].Log
	s.mu.Unlock()

	if len(log) != MaxLogEntries {
		t.Fatalf("log length = %d, want %d", len(log), MaxLogEntries)
	}
	for i, rec := range log {
		want := fmt.Sprintf("entry %d", i+100)
		if rec.Message != want {
			t.Fatalf("log[%d] = %q, want %q", i, rec.Message, want)
		}
	}

	state, _ := s.State("s1")
	if len(state.Log) != LogWindow {
		t.Fatalf("state log = %d entries, want %d", len(state.Log), LogWindow)
	}
	if state.Log[0].Message != "entry 500" || state.Log[LogWindow-1].Message != "entry 599" {
		t.Errorf("state log window = %q..%q", state.Log[0].Message, state.Log[LogWindow-1].Message)
	}
}

func TestTouchUpdatesLastActivity(t *testing.T) {
	s, _, clk := newTestStore(t)
	s.RecordStatus(status("s1", "a", "hi"), "")

	clk.Advance(time.Minute)
	if err := s.AddQuestion(models.Question{ID: "q-1-a", Session: "s1", Question: "ok?"}); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	state, _ := s.State("s1")
	if want := epoch.Add(time.Minute); !state.LastActivity.Equal(want) {
		t.Errorf("LastActivity after question = %v, want %v", state.LastActivity, want)
	}

	clk.Advance(time.Minute)
	if _, err := s.Answer("q-1-a", "", "yes"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	state, _ = s.State("s1")
	if want := epoch.Add(2 * time.Minute); !state.LastActivity.Equal(want) {
		t.Errorf("LastActivity after answer = %v, want %v", state.LastActivity, want)
	}
}

func TestAddQuestionRejectsDuplicateAcrossSessions(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := s.AddQuestion(models.Question{ID: "q-1-a", Session: "s1", Question: "one"}); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	err := s.AddQuestion(models.Question{ID: "q-1-a", Session: "s2", Question: "two"})
	if !errors.Is(err, ErrDuplicateQuestionID) {
		t.Fatalf("err = %v, want ErrDuplicateQuestionID", err)
	}
	if s.Len() != 1 {
		t.Errorf("rejected question created a session: Len() = %d", s.Len())
	}
}

func TestAnswerOnceThenConflict(t *testing.T) {
	s, rec, _ := newTestStore(t)
	s.AddQuestion(models.Question{ID: "q-1-a", Session: "s1", Agent: "planner", Question: "Proceed?"})

	q, err := s.Answer("q-1-a", "", "yes")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !q.Answered || q.Answer != "yes" || q.AnsweredAt == nil {
		t.Errorf("answered question = %+v", q)
	}

	_, err = s.Answer("q-1-a", "", "no")
	if !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second answer err = %v, want ErrAlreadyAnswered", err)
	}

	answered, _ := s.Answered("")
	if len(answered) != 1 || answered[0].Answer != "yes" {
		t.Errorf("Answered() = %+v, want the first answer kept", answered)
	}
	if n := len(rec.named(events.Answer)); n != 1 {
		t.Errorf("answer events = %d, want 1", n)
	}
}

func TestAnswerScopedToSession(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddQuestion(models.Question{ID: "q-1-a", Session: "s1", Question: "?"})
	s.GetOrCreate("s2")

	if _, err := s.Answer("q-1-a", "s2", "yes"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("answer in wrong session err = %v, want ErrQuestionNotFound", err)
	}
	if _, err := s.Answer("q-9-z", "", "yes"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("unknown id err = %v, want ErrQuestionNotFound", err)
	}
	if _, err := s.Answer("q-1-a", "s1", "yes"); err != nil {
		t.Errorf("answer in owning session: %v", err)
	}
}

func TestAnsweredUnknownSession(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.Answered("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	all, err := s.Answered("")
	if err != nil || all == nil || len(all) != 0 {
		t.Errorf("Answered(\"\") = %v, %v; want empty non-nil", all, err)
	}
}

func TestResetOne(t *testing.T) {
	s, rec, _ := newTestStore(t)
	s.AddQuestion(models.Question{ID: "q-1-a", Session: "s1", Question: "?"})
	s.GetOrCreate("s2")

	s.Reset("s1")

	if _, err := s.State("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("State(s1) err = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.Answer("q-1-a", "", "yes"); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("question index kept evicted question: %v", err)
	}
	removed := rec.named(events.SessionRemoved)
	if len(removed) != 1 || removed[0].payload.(models.SessionRef).ID != "s1" {
		t.Errorf("session-removed events = %+v", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestResetAll(t *testing.T) {
	s, rec, _ := newTestStore(t)
	s.GetOrCreate("s1")
	s.GetOrCreate("s2")

	s.ResetAll()

	if s.Len() != 0 || len(s.Summaries()) != 0 {
		t.Errorf("registry not empty after ResetAll")
	}
	resets := rec.named(events.Reset)
	if len(resets) != 1 {
		t.Fatalf("reset events = %d, want 1", len(resets))
	}
	if got := resets[0].payload.(models.ResetNotice).ServerStartedAt; !got.Equal(epoch) {
		t.Errorf("reset serverStartedAt = %v, want %v", got, epoch)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s, rec, clk := newTestStore(t)
	s.GetOrCreate("idle")

	clk.Advance(3 * time.Hour)
	s.RecordStatus(status("busy", "a", "hi"), "")

	clk.Advance(time.Hour + time.Second)
	removed := s.Sweep()

	if !reflect.DeepEqual(removed, []string{"idle"}) {
		t.Fatalf("Sweep() = %v, want [idle]", removed)
	}
	if _, err := s.State("busy"); err != nil {
		t.Errorf("active session evicted: %v", err)
	}
	evs := rec.named(events.SessionRemoved)
	if len(evs) != 1 || evs[0].payload.(models.SessionRef).ID != "idle" {
		t.Errorf("session-removed events = %+v", evs)
	}

	if again := s.Sweep(); len(again) != 0 {
		t.Errorf("second sweep removed %v", again)
	}
	if n := len(rec.named(events.SessionRemoved)); n != 1 {
		t.Errorf("session-removed emitted %d times, want exactly 1", n)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		agents     map[string]models.AgentStatus
		wantPhase  string
		wantActive int
	}{
		{"no agents", nil, "0", 0},
		{
			"max numeric prefix",
			map[string]models.AgentStatus{
				"a": {StatusRecord: models.StatusRecord{Phase: "2.1", Status: models.StateWorking}},
				"b": {StatusRecord: models.StatusRecord{Phase: "10.3", Status: models.StateComplete}},
				"c": {StatusRecord: models.StatusRecord{Phase: "4", Status: models.StateStarted}},
			},
			"10", 2,
		},
		{
			"non-numeric prefixes ignored",
			map[string]models.AgentStatus{
				"a": {StatusRecord: models.StatusRecord{Phase: "setup.1", Status: models.StateBlocked}},
				"b": {StatusRecord: models.StatusRecord{Phase: "3.x", Status: models.StateError}},
			},
			"3", 0,
		},
		{
			"all phases unparseable",
			map[string]models.AgentStatus{
				"a": {StatusRecord: models.StatusRecord{Phase: "review"}},
			},
			"0", 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &Session{
				ID:     "s",
				Agents: tt.agents,
				Questions: []*models.Question{
					{ID: "1", Answered: true},
					{ID: "2"},
				},
			}
			got := Summarize(sess)
			if got.CurrentPhase != tt.wantPhase {
				t.Errorf("CurrentPhase = %q, want %q", got.CurrentPhase, tt.wantPhase)
			}
			if got.ActiveAgents != tt.wantActive {
				t.Errorf("ActiveAgents = %d, want %d", got.ActiveAgents, tt.wantActive)
			}
			if got.TotalAgents != len(tt.agents) {
				t.Errorf("TotalAgents = %d, want %d", got.TotalAgents, len(tt.agents))
			}
			if got.PendingQuestions != 1 {
				t.Errorf("PendingQuestions = %d, want 1", got.PendingQuestions)
			}
		})
	}
}

func TestSubscribeInitMatchesSnapshot(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := 0; i < 150; i++ {
		s.RecordStatus(status("s1", "a", fmt.Sprintf("m%d", i)), "")
	}
	s.AddQuestion(models.Question{ID: "q-1-a", Session: "s2", Question: "?", Timestamp: epoch})

	want, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := s.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	var frame events.Frame
	select {
	case frame = <-sub.Frames():
	case <-time.After(5 * time.Second):
		t.Fatal("no init frame")
	}

	wantFrame, _ := events.Encode(events.Init, json.RawMessage(want))
	if string(frame) != string(wantFrame) {
		t.Errorf("init frame does not match snapshot\n got: %.200s\nwant: %.200s", frame, wantFrame)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(want, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n := len(snap.Sessions["s1"].Log); n != LogWindow {
		t.Errorf("init log window = %d, want %d", n, LogWindow)
	}
}
