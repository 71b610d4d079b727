package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/accountd/account-service/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []domain.ResetNotification
	fail error
	got  chan struct{}
}

func newRecordingNotifier(buffer int) *recordingNotifier {
	return &recordingNotifier{got: make(chan struct{}, buffer)}
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.ResetNotification) error {
	r.mu.Lock()
	r.seen = append(r.seen, n)
	r.mu.Unlock()
	r.got <- struct{}{}
	return r.fail
}

func (r *recordingNotifier) tokensFor(accountID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.seen {
		if n.AccountID == accountID {
			out = append(out, n.Token)
		}
	}
	return out
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("timed out after %d of %d deliveries", i, n)
		}
	}
}

func TestDispatcher_DeliversInOrderPerAccount(t *testing.T) {
	const perAccount = 20
	notifier := newRecordingNotifier(3 * perAccount)
	d := NewDispatcher(3, notifier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < perAccount; i++ {
		for _, acct := range []string{"a", "b", "c"} {
			n := domain.ResetNotification{AccountID: acct, Token: fmt.Sprintf("%s-%02d", acct, i)}
			if err := d.Notify(context.Background(), n); err != nil {
				t.Fatalf("Notify: %v", err)
			}
		}
	}
	waitFor(t, notifier.got, 3*perAccount)

	cancel()
	d.Wait()

	for _, acct := range []string{"a", "b", "c"} {
		got := notifier.tokensFor(acct)
		if len(got) != perAccount {
			t.Fatalf("account %s: got %d notifications, want %d", acct, len(got), perAccount)
		}
		for i, tok := range got {
			if want := fmt.Sprintf("%s-%02d", acct, i); tok != want {
				t.Errorf("account %s position %d = %q, want %q", acct, i, tok, want)
			}
		}
	}
}

func TestDispatcher_NotifierErrorDoesNotStopWorker(t *testing.T) {
	notifier := newRecordingNotifier(2)
	notifier.fail = errors.New("smtp down")
	d := NewDispatcher(1, notifier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	_ = d.Notify(context.Background(), domain.ResetNotification{AccountID: "a", Token: "1"})
	_ = d.Notify(context.Background(), domain.ResetNotification{AccountID: "a", Token: "2"})
	waitFor(t, notifier.got, 2)

	cancel()
	d.Wait()
}

func TestDispatcher_NotifyAfterStop(t *testing.T) {
	d := NewDispatcher(1, newRecordingNotifier(0), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	err := d.Notify(context.Background(), domain.ResetNotification{AccountID: "a"})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestDispatcher_DrainsBufferedOnShutdown(t *testing.T) {
	const queued = 50
	notifier := newRecordingNotifier(queued)
	d := NewDispatcher(1, notifier, zerolog.Nop())

	for i := 0; i < queued; i++ {
		n := domain.ResetNotification{AccountID: "a", Token: fmt.Sprintf("a-%02d", i)}
		if err := d.Notify(context.Background(), n); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	got := notifier.tokensFor("a")
	if len(got) != queued {
		t.Fatalf("delivered %d of %d queued notifications", len(got), queued)
	}
	for i, tok := range got {
		if want := fmt.Sprintf("a-%02d", i); tok != want {
			t.Errorf("position %d = %q, want %q", i, tok, want)
		}
	}
}

func TestDispatcher_AcceptedNotificationsSurviveShutdown(t *testing.T) {
	const attempts = 500
	notifier := newRecordingNotifier(attempts)
	d := NewDispatcher(2, notifier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	var (
		wg       sync.WaitGroup
		accepted int
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < attempts; i++ {
			if i == attempts/2 {
				cancel()
			}
			n := domain.ResetNotification{AccountID: fmt.Sprintf("acct-%d", i%7), Token: fmt.Sprint(i)}
			switch err := d.Notify(context.Background(), n); {
			case err == nil:
				accepted++
			case errors.Is(err, ErrStopped):
			default:
				t.Errorf("Notify: %v", err)
			}
		}
	}()
	wg.Wait()
	d.Wait()

	notifier.mu.Lock()
	delivered := len(notifier.seen)
	notifier.mu.Unlock()
	if delivered != accepted {
		t.Fatalf("accepted %d notifications but delivered %d", accepted, delivered)
	}
}

func TestDispatcher_NotifyHonoursCallerContext(t *testing.T) {
	d := NewDispatcher(1, newRecordingNotifier(0), zerolog.Nop())
	for i := 0; i < channelBuffer; i++ {
		d.workers[0] <- domain.ResetNotification{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Notify(ctx, domain.ResetNotification{AccountID: "a"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestShardIndex_Stable(t *testing.T) {
	d := NewDispatcher(8, newRecordingNotifier(0), zerolog.Nop())
	first := d.shardIndex("account-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("account-42"); got != first {
			t.Fatalf("shardIndex changed: %d != %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shardIndex out of range: %d", first)
	}
}
