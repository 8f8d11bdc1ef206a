// internal/classroom/classroom_test.go
//
// 本檔為 Classroom 與 Session 的整合測試：
// session 建立與隔離、匯出/還原、以及高併發下的資料一致性。
// 所有測試皆為 in-memory 執行，不依賴外部服務。

package classroom

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestClassroom() *Classroom {
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	return New(
		WithClock(fixedClock(t0)),
		WithIDGenerators(func() string { n++; return fmt.Sprintf("s%d", n) }, seqIDs()),
	)
}

// get 為小工具：取出 session，失敗即終止測試。
func get(t *testing.T, c *Classroom, id string) *Session {
	t.Helper()
	s, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get(%s) err=%v", id, err)
	}
	return s
}

// TestCreateSeedsSession 驗證新 session 帶有種子快照、種子程式碼與初始問答。
func TestCreateSeedsSession(t *testing.T) {
	c := newTestClassroom()
	s := c.Create("  JS 101 ")
	v := s.View()
	if v.Name != "JS 101" {
		t.Fatalf("name=%q", v.Name)
	}
	if len(v.Snapshots) != 1 || v.Snapshots[0].Title != "Initial Code" || v.CurrentVersion != 0 {
		t.Fatalf("seed snapshot unexpected: %+v", v)
	}
	if v.Code != InitialCode || v.Dirty {
		t.Fatalf("code=%q dirty=%v", v.Code, v.Dirty)
	}
	if qs := s.Questions(); len(qs) != 1 || len(qs[0].Replies) != 2 {
		t.Fatalf("seed questions unexpected: %+v", qs)
	}
	if c.Create("").Name != DefaultSessionName {
		t.Fatal("empty name should fall back to default")
	}
}

// TestSessionsAreIsolated 驗證不同 session 的狀態互不影響。
func TestSessionsAreIsolated(t *testing.T) {
	c := newTestClassroom()
	a := c.Create("A")
	b := c.Create("B")

	a.Edit("only in A")
	if _, err := a.CreateSnapshot("A1", ""); err != nil {
		t.Fatal(err)
	}
	_, _ = a.Vote("u1", Understood)

	if code, _ := b.Code(); code != InitialCode {
		t.Fatalf("session B code=%q", code)
	}
	if snaps, _ := b.Snapshots(); len(snaps) != 1 {
		t.Fatalf("session B snapshots=%d", len(snaps))
	}
	if b.Tally().Total != 0 {
		t.Fatal("session B votes leaked")
	}
}

func TestGetListDelete(t *testing.T) {
	c := newTestClassroom()
	a := c.Create("A")
	b := c.Create("B")

	list := c.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("list unexpected: %+v", list)
	}
	if list[0].SnapshotCount != 1 || list[0].QuestionCount != 1 {
		t.Fatalf("summary unexpected: %+v", list[0])
	}

	if err := c.Delete(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
	if err := c.Delete(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("double delete: want ErrSessionNotFound, got %v", err)
	}
	if c.Len() != 1 || c.List()[0].ID != b.ID {
		t.Fatalf("remaining sessions unexpected: %+v", c.List())
	}
}

func TestWithSeed(t *testing.T) {
	c := New(WithSeed(Seed{Code: "print('hi')", SnapshotTitle: "Start"}))
	v := c.Create("x").View()
	if v.Code != "print('hi')" || v.Snapshots[0].Title != "Start" {
		t.Fatalf("custom seed not applied: %+v", v)
	}
	if len(c.Create("y").Questions()) != 0 {
		t.Fatal("seed without messages should start with an empty board")
	}
}

// TestExportRestore 驗證匯出後還原，快照、目前版本、live buffer、問答與投票完全一致。
func TestExportRestore(t *testing.T) {
	c := newTestClassroom()
	s := c.Create("A")
	s.Edit("v2")
	_, _ = s.CreateSnapshot("second", "desc")
	_, _, _ = s.SelectVersion(1)
	s.Edit("unsaved")
	q, _ := s.Ask("Why?", User{Name: "Park"})
	_, _ = s.Reply(q.ID, "Because.", User{Name: "T", IsInstructor: true})
	_, _ = s.Vote("u1", NeedMore)
	c.Create("B")

	st := c.Export()
	if len(st.Sessions) != 2 {
		t.Fatalf("exported sessions=%d", len(st.Sessions))
	}

	c2 := newTestClassroom()
	if err := c2.Restore(st); err != nil {
		t.Fatal(err)
	}
	r := get(t, c2, s.ID)
	v, rv := s.View(), r.View()
	if rv.Code != "unsaved" || !rv.Dirty || rv.CurrentVersion != 1 {
		t.Fatalf("restored editor state unexpected: %+v", rv)
	}
	if len(rv.Snapshots) != len(v.Snapshots) {
		t.Fatalf("snapshots %d vs %d", len(rv.Snapshots), len(v.Snapshots))
	}
	for i := range v.Snapshots {
		if v.Snapshots[i] != rv.Snapshots[i] {
			t.Fatalf("snapshot %d mismatch: %+v vs %+v", i, v.Snapshots[i], rv.Snapshots[i])
		}
	}
	qs := r.Questions()
	if len(qs) != 2 || len(qs[1].Replies) != 1 || !qs[1].Replies[0].User.IsInstructor {
		t.Fatalf("restored questions unexpected: %+v", qs)
	}
	if tl := r.Tally(); tl.Total != 1 || votesFor(tl, NeedMore) != 1 {
		t.Fatalf("restored tally unexpected: %+v", tl)
	}
	if list := c2.List(); len(list) != 2 || list[0].ID != s.ID {
		t.Fatalf("restored order unexpected: %+v", list)
	}

	// 還原後可繼續建立快照，ID 延續 len+1
	snap, err := r.CreateSnapshot("third", "")
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID != 3 {
		t.Fatalf("id=%d want=3", snap.ID)
	}
}

// TestRestoreRejectsCorruptState 驗證違反不變量的資料整批拒絕，原狀態不變。
func TestRestoreRejectsCorruptState(t *testing.T) {
	c := newTestClassroom()
	keep := c.Create("keep")

	st := c.Export()
	st.Sessions[0].Current = 5
	if err := c.Restore(st); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("want ErrCorruptState, got %v", err)
	}

	st = c.Export()
	st.Sessions[0].Poll.Votes = map[string]string{"u": "maybe"}
	if err := c.Restore(st); !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("want ErrUnknownChoice, got %v", err)
	}

	if _, err := c.Get(keep.ID); err != nil {
		t.Fatalf("original state should survive a failed restore: %v", err)
	}
}

// TestRestoreRecomputesDirty 驗證 dirty 依 live buffer 與目前快照重新計算，
// 檔案中的旗標與內容不符時以內容為準。
func TestRestoreRecomputesDirty(t *testing.T) {
	c := newTestClassroom()
	s := c.Create("A")

	st := c.Export()
	st.Sessions[0].Code = "not the snapshot"
	st.Sessions[0].Dirty = false
	if err := c.Restore(st); err != nil {
		t.Fatal(err)
	}
	r := get(t, c, s.ID)
	if code, dirty := r.Code(); code != "not the snapshot" || !dirty {
		t.Fatalf("code=%q dirty=%v, want dirty buffer", code, dirty)
	}
	if _, discarded, _ := r.SelectVersion(0); !discarded {
		t.Fatal("switching away from restored edits should report discarded")
	}

	st = c.Export()
	st.Sessions[0].Dirty = true
	if err := c.Restore(st); err != nil {
		t.Fatal(err)
	}
	if _, dirty := get(t, c, s.ID).Code(); dirty {
		t.Fatal("buffer equal to current snapshot must restore clean")
	}
}

// TestResetPollKeepsSeedPrompt 驗證清空投票且未指定題目時，回到種子設定的題目（還原後亦同）。
func TestResetPollKeepsSeedPrompt(t *testing.T) {
	c := New(WithSeed(Seed{PollPrompt: "Ready to move on?"}))
	s := c.Create("A")
	if p := s.Tally().Prompt; p != "Ready to move on?" {
		t.Fatalf("prompt=%q", p)
	}
	s.ResetPoll("Quick check")
	if p := s.ResetPoll("").Prompt; p != "Ready to move on?" {
		t.Fatalf("after reset prompt=%q", p)
	}

	s.ResetPoll("Quick check")
	st := c.Export()
	if err := c.Restore(st); err != nil {
		t.Fatal(err)
	}
	r := get(t, c, s.ID)
	if p := r.Tally().Prompt; p != "Quick check" {
		t.Fatalf("restored round prompt=%q", p)
	}
	if p := r.ResetPoll("").Prompt; p != "Ready to move on?" {
		t.Fatalf("restored reset prompt=%q", p)
	}
}

// TestSeedMessagesDefaultUserName 驗證種子訊息未填名稱時與 Ask/Reply 一樣預設為 Student。
func TestSeedMessagesDefaultUserName(t *testing.T) {
	c := New(WithSeed(Seed{Messages: []SeedMessage{{
		Text:    "Anyone?",
		Replies: []SeedMessage{{Text: "Here.", User: User{IsInstructor: true}}},
	}}}))
	qs := c.Create("A").Questions()
	if len(qs) != 1 || len(qs[0].Replies) != 1 {
		t.Fatalf("seed thread unexpected: %+v", qs)
	}
	if qs[0].User.Name != DefaultUserName || qs[0].Replies[0].User.Name != DefaultUserName {
		t.Fatalf("names %q / %q", qs[0].User.Name, qs[0].Replies[0].User.Name)
	}
	if !qs[0].Replies[0].User.IsInstructor {
		t.Fatal("instructor flag lost")
	}
}

// TestConcurrentSnapshots 驗證多個 goroutine 同時建立快照與切換版本時，
// 長度正確、ID 不重複、目前版本永遠合法。
func TestConcurrentSnapshots(t *testing.T) {
	c := New()
	s := c.Create("race")

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(2 * workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			s.Edit(fmt.Sprintf("code %d", i))
			if _, err := s.CreateSnapshot(fmt.Sprintf("t%d", i), ""); err != nil {
				t.Errorf("create: %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			_, _, _ = s.SelectVersion(0)
		}()
	}
	wg.Wait()

	snaps, cur := s.Snapshots()
	if len(snaps) != workers+1 {
		t.Fatalf("len=%d want=%d", len(snaps), workers+1)
	}
	if cur < 0 || cur >= len(snaps) {
		t.Fatalf("current=%d out of range", cur)
	}
	seen := map[int]bool{}
	for _, sn := range snaps {
		if seen[sn.ID] {
			t.Fatalf("duplicate id %d", sn.ID)
		}
		seen[sn.ID] = true
	}
	// 最後一次 Edit 可能晚於最後一次建立/切換，只有在非 dirty 時才要求一致
	if code, dirty := s.Code(); !dirty && code != snaps[cur].Code {
		t.Fatalf("editor code %q does not match current snapshot %q", code, snaps[cur].Code)
	}
}
