package paging

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/simp-lee/koiconsult/internal/client"
	"github.com/simp-lee/koiconsult/internal/notify"
)

// fakeServer pages over items and records every query it receives.
type fakeServer struct {
	mu      sync.Mutex
	items   []int
	fail    error
	queries []client.PageQuery
}

func (f *fakeServer) fetch(_ context.Context, q client.PageQuery) (client.Page[int], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail != nil {
		return client.Page[int]{}, f.fail
	}
	total := len(f.items)
	pages := (total + q.PageSize - 1) / q.PageSize
	start := min((q.PageIndex-1)*q.PageSize, total)
	end := min(start+q.PageSize, total)
	return client.Page[int]{
		PageIndex:  q.PageIndex,
		TotalPages: pages,
		TotalItems: int64(total),
		Datas:      append([]int(nil), f.items[start:end]...),
	}, nil
}

func (f *fakeServer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeServer) last() client.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestRefetch_LoadsFirstPage(t *testing.T) {
	srv := &fakeServer{items: seq(12)}
	c := New(srv.fetch, WithPageSize(5))

	if err := c.Refetch(context.Background()); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	st := c.State()
	if st.PageIndex != 1 || st.TotalPages != 3 || st.TotalItems != 12 || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	if st.HasPrevious || !st.HasNext {
		t.Errorf("hasPrevious/hasNext = %v/%v", st.HasPrevious, st.HasNext)
	}
	if !reflect.DeepEqual(st.Items, []int{1, 2, 3, 4, 5}) {
		t.Errorf("items = %v", st.Items)
	}
}

func TestSetPage_NoOps(t *testing.T) {
	srv := &fakeServer{items: seq(12)}
	c := New(srv.fetch, WithPageSize(5))
	ctx := context.Background()
	if err := c.Refetch(ctx); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{1, 0, -2, 4} {
		if err := c.SetPage(ctx, n); err != nil {
			t.Fatalf("SetPage(%d): %v", n, err)
		}
	}
	if srv.calls() != 1 {
		t.Errorf("no-op SetPage issued %d extra fetches", srv.calls()-1)
	}

	if err := c.PreviousPage(ctx); err != nil || srv.calls() != 1 {
		t.Errorf("PreviousPage on first page fetched: calls=%d err=%v", srv.calls(), err)
	}
	if err := c.SetPage(ctx, 3); err != nil {
		t.Fatalf("SetPage(3): %v", err)
	}
	if err := c.NextPage(ctx); err != nil || srv.calls() != 2 {
		t.Errorf("NextPage on last page fetched: calls=%d err=%v", srv.calls(), err)
	}
	if st := c.State(); st.PageIndex != 3 || !reflect.DeepEqual(st.Items, []int{11, 12}) || st.HasNext {
		t.Errorf("state = %+v", st)
	}
}

func TestSetFilter_MergesAndResetsPage(t *testing.T) {
	srv := &fakeServer{items: seq(30)}
	c := New(srv.fetch, WithPageSize(5), WithFilters(map[string]any{"orderBlog": 1}))
	ctx := context.Background()
	_ = c.Refetch(ctx)
	_ = c.SetPage(ctx, 4)

	if err := c.SetFilter(ctx, map[string]any{"title": "koi", "blogStatus": nil}); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	q := srv.last()
	if q.PageIndex != 1 {
		t.Errorf("pageIndex = %d, want 1", q.PageIndex)
	}
	want := map[string]any{"orderBlog": 1, "title": "koi", "blogStatus": nil}
	if !reflect.DeepEqual(q.Filters, want) {
		t.Errorf("filters = %v, want %v", q.Filters, want)
	}
	if st := c.State(); st.PageIndex != 1 {
		t.Errorf("state pageIndex = %d", st.PageIndex)
	}
}

func TestSetFilter_FailureStillResetsPage(t *testing.T) {
	srv := &fakeServer{items: seq(30)}
	c := New(srv.fetch, WithPageSize(5), WithNotifier(&notify.Recorder{}))
	ctx := context.Background()
	_ = c.Refetch(ctx)
	_ = c.SetPage(ctx, 3)

	srv.fail = errors.New("boom")
	if err := c.SetFilter(ctx, map[string]any{"title": "x"}); err == nil {
		t.Fatal("expected SetFilter error")
	}
	st := c.State()
	if st.PageIndex != 1 || st.Filters["title"] != "x" {
		t.Fatalf("state after failed filter = page %d filters %v", st.PageIndex, st.Filters)
	}

	srv.fail = nil
	if err := c.NextPage(ctx); err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	q := srv.last()
	if q.PageIndex != 2 || q.Filters["title"] != "x" {
		t.Errorf("next query = page %d filters %v, want page 2 with title x", q.PageIndex, q.Filters)
	}

	if err := c.Refetch(ctx); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if q := srv.last(); q.PageIndex != 2 {
		t.Errorf("refetch page = %d", q.PageIndex)
	}
}

func TestFailure_KeepsItemsAndNotifies(t *testing.T) {
	srv := &fakeServer{items: seq(12)}
	rec := &notify.Recorder{}
	c := New(srv.fetch, WithPageSize(5), WithNotifier(rec))
	ctx := context.Background()
	_ = c.Refetch(ctx)

	srv.fail = &client.Error{Kind: client.KindTransport, Err: errors.New("connection refused")}
	err := c.SetPage(ctx, 2)
	if !client.IsTransport(err) {
		t.Fatalf("SetPage error = %v", err)
	}

	st := c.State()
	if st.Loading || st.PageIndex != 1 || !reflect.DeepEqual(st.Items, []int{1, 2, 3, 4, 5}) {
		t.Errorf("state after failure = %+v", st)
	}
	last, ok := rec.Last()
	if !ok || last.Level != notify.LevelError || last.Message != client.MessageUnknown {
		t.Errorf("notification = %+v, %v", last, ok)
	}
}

func TestClampsWhenServerShrinks(t *testing.T) {
	srv := &fakeServer{items: seq(15)}
	c := New(srv.fetch, WithPageSize(5))
	ctx := context.Background()
	_ = c.Refetch(ctx)
	_ = c.SetPage(ctx, 3)

	srv.items = seq(7)
	before := srv.calls()
	if err := c.Refetch(ctx); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if got := srv.calls() - before; got != 2 {
		t.Errorf("fetches = %d, want request plus one clamped retry", got)
	}
	st := c.State()
	if st.PageIndex != 2 || st.TotalPages != 2 || !reflect.DeepEqual(st.Items, []int{6, 7}) {
		t.Errorf("state = %+v", st)
	}

	srv.items = nil
	if err := c.Refetch(ctx); err != nil {
		t.Fatalf("Refetch empty: %v", err)
	}
	if st := c.State(); st.PageIndex != 1 || len(st.Items) != 0 || st.TotalPages != 0 {
		t.Errorf("empty state = %+v", st)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	fetch := func(ctx context.Context, q client.PageQuery) (client.Page[string], error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
			return client.Page[string]{PageIndex: 1, TotalPages: 1, Datas: []string{"old"}}, nil
		}
		return client.Page[string]{PageIndex: 1, TotalPages: 1, Datas: []string{"new"}}, nil
	}
	c := New(fetch)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- c.Refetch(ctx) }()
	<-started

	if err := c.SetFilter(ctx, map[string]any{"title": "koi"}); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	close(release)

	if err := <-errc; !errors.Is(err, ErrStale) {
		t.Fatalf("first fetch error = %v, want ErrStale", err)
	}
	st := c.State()
	if !reflect.DeepEqual(st.Items, []string{"new"}) || st.Loading {
		t.Errorf("state = %+v", st)
	}
}

func TestPatch_ReplacedByNextFetch(t *testing.T) {
	srv := &fakeServer{items: seq(3)}
	c := New(srv.fetch)
	ctx := context.Background()
	_ = c.Refetch(ctx)

	c.Patch(func(items []int) []int {
		items[0] = 100
		return append(items, 4)
	})
	if got := c.Items(); !reflect.DeepEqual(got, []int{100, 2, 3, 4}) {
		t.Fatalf("patched items = %v", got)
	}

	_ = c.Refetch(ctx)
	if got := c.Items(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("items after refetch = %v", got)
	}
}

func TestState_ReturnsCopies(t *testing.T) {
	srv := &fakeServer{items: seq(2)}
	c := New(srv.fetch, WithFilters(map[string]any{"name": "a"}))
	_ = c.Refetch(context.Background())

	st := c.State()
	st.Items[0] = 99
	st.Filters["name"] = "changed"

	again := c.State()
	if again.Items[0] != 1 || again.Filters["name"] != "a" {
		t.Errorf("state leaked internal storage: %+v", again)
	}
}

func TestNew_PanicsOnNilFetch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	New[int](nil)
}
