package trade_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/atmx/trading-account/internal/pricing"
	"github.com/atmx/trading-account/internal/store"
	"github.com/atmx/trading-account/internal/trade"
)

// captureHook records every command and answers it without a server.
type captureHook struct {
	mu   sync.Mutex
	args [][]interface{}
}

func (h *captureHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *captureHook) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.args = append(h.args, cmd.Args())
		return nil
	}
}

func (h *captureHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisPublisher_Payload(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	hook := &captureHook{}
	rdb.AddHook(hook)

	pub := trade.NewRedisPublisher(rdb, "account-events")
	ev := trade.Event{Type: trade.EventTransaction, AccountID: "acct-1", Balance: "850", Message: "Sold 1 shares of AAPL. New balance: $850.00"}
	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	hook.mu.Lock()
	defer hook.mu.Unlock()
	if len(hook.args) != 1 {
		t.Fatalf("expected 1 command, got %d", len(hook.args))
	}
	args := hook.args[0]
	if len(args) != 3 || args[0] != "publish" || args[1] != "account-events" {
		t.Fatalf("unexpected command %v", args)
	}

	payload, ok := args[2].([]byte)
	if !ok {
		t.Fatalf("expected []byte payload, got %T", args[2])
	}
	var got trade.Event
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("bad payload %q: %v", payload, err)
	}
	if got.AccountID != "acct-1" || got.Message != ev.Message || got.Balance != "850" {
		t.Errorf("unexpected event %+v", got)
	}
}

// unreachableRedis returns a client for a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisPublisher_Unreachable(t *testing.T) {
	pub := trade.NewRedisPublisher(unreachableRedis(t), "account-events")
	if err := pub.Publish(context.Background(), trade.Event{Type: trade.EventTransaction}); err == nil {
		t.Error("expected an error from an unreachable server")
	}
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	rec := &recorder{}
	pub := trade.MultiPublisher{rec, trade.NewRedisPublisher(unreachableRedis(t), "account-events")}
	svc := trade.NewService(store.NewMemoryStore(), pricing.NewStaticOracle(nil), pub)

	router := chi.NewRouter()
	router.Route("/api/v1", svc.Routes)
	id := openAccount(t, router, 1000)

	w := do(t, router, "POST", path(id, "/deposit"), trade.AmountRequest{Amount: d(25)})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite publish failure, got %d: %s", w.Code, w.Body.String())
	}

	events := rec.all()
	if len(events) != 2 || events[1].Type != trade.EventTransaction {
		t.Errorf("other publishers should still receive events, got %+v", events)
	}
}
