package etcd

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/heytom-labs/heytom-healthroute/internal/store"
)

func TestKey(t *testing.T) {
	if got := Key("default", "healthy-pods-configmap"); got != "/default/healthy-pods-configmap" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGuard(t *testing.T) {
	s := New(nil, nil, "/ns/rec")

	cmp, err := s.guard("")
	if err != nil {
		t.Fatalf("guard failed: %v", err)
	}
	if cmp.Target != etcdserverpb.Compare_CREATE || cmp.Result != etcdserverpb.Compare_EQUAL {
		t.Errorf("expect create revision == 0 guard, got %v %v", cmp.Target, cmp.Result)
	}
	if string(cmp.KeyBytes()) != "/ns/rec" {
		t.Errorf("unexpected guard key %q", cmp.KeyBytes())
	}

	cmp, err = s.guard("42")
	if err != nil {
		t.Fatalf("guard failed: %v", err)
	}
	if cmp.Target != etcdserverpb.Compare_MOD {
		t.Errorf("expect mod revision guard, got %v", cmp.Target)
	}
	if u, ok := cmp.TargetUnion.(*etcdserverpb.Compare_ModRevision); !ok || u.ModRevision != 42 {
		t.Errorf("expect mod revision 42, got %#v", cmp.TargetUnion)
	}

	if _, err := s.guard("abc"); err == nil {
		t.Error("expect error for non-numeric version")
	}
}

// erroringKV fails every call; embedding the interface covers the methods
// the store never calls.
type erroringKV struct {
	clientv3.KV
}

func (erroringKV) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	return nil, errors.New("etcd down")
}

func TestReadBackendError(t *testing.T) {
	s := New(erroringKV{}, nil, "/ns/rec")

	_, err := s.Read(context.Background())
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expect backend error, got %v", err)
	}
}

func TestCloseWithoutCloser(t *testing.T) {
	if err := New(nil, nil, "/ns/rec").Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

// memKV keeps keys in memory with etcd revision semantics: every put bumps
// the store revision, CreateRevision is 0 for an absent key.
type memKV struct {
	clientv3.KV
	t *testing.T

	mu   sync.Mutex
	rev  int64
	kvs  map[string]*mvccpb.KeyValue
	txns int
}

func newMemKV(t *testing.T) *memKV {
	return &memKV{t: t, kvs: make(map[string]*mvccpb.KeyValue)}
}

func (m *memKV) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := &clientv3.GetResponse{}
	if kv, ok := m.kvs[key]; ok {
		c := *kv
		resp.Kvs = []*mvccpb.KeyValue{&c}
	}
	return resp, nil
}

func (m *memKV) Txn(ctx context.Context) clientv3.Txn {
	return &memTxn{kv: m}
}

// put stores value at a new revision. Caller holds mu.
func (m *memKV) put(key string, value []byte) {
	m.rev++
	kv, ok := m.kvs[key]
	if !ok {
		kv = &mvccpb.KeyValue{Key: []byte(key), CreateRevision: m.rev}
		m.kvs[key] = kv
	}
	kv.Value = append([]byte(nil), value...)
	kv.ModRevision = m.rev
	kv.Version++
}

// compare evaluates an equality guard on create or mod revision. Caller holds mu.
func (m *memKV) compare(cmp clientv3.Cmp) bool {
	var create, mod int64
	if kv, ok := m.kvs[string(cmp.KeyBytes())]; ok {
		create, mod = kv.CreateRevision, kv.ModRevision
	}
	if cmp.Result != etcdserverpb.Compare_EQUAL {
		m.t.Fatalf("unsupported compare result %v", cmp.Result)
	}
	switch u := cmp.TargetUnion.(type) {
	case *etcdserverpb.Compare_CreateRevision:
		return create == u.CreateRevision
	case *etcdserverpb.Compare_ModRevision:
		return mod == u.ModRevision
	default:
		m.t.Fatalf("unsupported compare target %v", cmp.Target)
		return false
	}
}

type memTxn struct {
	kv   *memKV
	cmps []clientv3.Cmp
	then []clientv3.Op
	els  []clientv3.Op
}

func (x *memTxn) If(cs ...clientv3.Cmp) clientv3.Txn {
	x.cmps = append(x.cmps, cs...)
	return x
}

func (x *memTxn) Then(ops ...clientv3.Op) clientv3.Txn {
	x.then = append(x.then, ops...)
	return x
}

func (x *memTxn) Else(ops ...clientv3.Op) clientv3.Txn {
	x.els = append(x.els, ops...)
	return x
}

func (x *memTxn) Commit() (*clientv3.TxnResponse, error) {
	m := x.kv
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns++

	ok := true
	for _, c := range x.cmps {
		if !m.compare(c) {
			ok = false
			break
		}
	}
	ops := x.then
	if !ok {
		ops = x.els
	}
	for _, op := range ops {
		if !op.IsPut() {
			return nil, errors.New("only put is supported")
		}
		m.put(string(op.KeyBytes()), op.ValueBytes())
	}
	return &clientv3.TxnResponse{Succeeded: ok}, nil
}

func newMemStore(t *testing.T) (*Store, *memKV) {
	t.Helper()
	kv := newMemKV(t)
	return New(kv, nil, "/ns/rec"), kv
}

func TestReadMissingKey(t *testing.T) {
	s, _ := newMemStore(t)

	_, err := s.Read(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expect ErrNotFound, got %v", err)
	}
}

func TestUpdateCreatesAndModifiesKey(t *testing.T) {
	s, kv := newMemStore(t)
	ctx := context.Background()

	if err := store.Update(ctx, s, 3, func(f map[string]string) { f["healthy_pods"] = "{}" }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rec, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.Version != "1" {
		t.Errorf("expect version 1 after create, got %q", rec.Version)
	}

	if err := store.Update(ctx, s, 3, func(f map[string]string) { f["healthy_pods"] = `{"a":[]}` }); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rec, err = s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.Version != "2" {
		t.Errorf("expect version 2 after modify, got %q", rec.Version)
	}
	if rec.Fields["healthy_pods"] != `{"a":[]}` {
		t.Errorf("unexpected fields %v", rec.Fields)
	}
	if kv.txns != 2 {
		t.Errorf("expect 2 transactions, got %d", kv.txns)
	}
}

func TestWriteStaleVersionConflicts(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, &store.Record{Fields: map[string]string{"healthy_pods": "{}"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stale, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if err := s.Write(ctx, &store.Record{Fields: map[string]string{"healthy_pods": `{"a":[]}`}, Version: stale.Version}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	stale.Fields["healthy_pods"] = `{"b":[]}`
	if err := s.Write(ctx, stale); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expect ErrConflict, got %v", err)
	}

	rec, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.Fields["healthy_pods"] != `{"a":[]}` {
		t.Errorf("stale write must not be applied, got %v", rec.Fields)
	}
}

func TestCreateOverExistingConflicts(t *testing.T) {
	s, _ := newMemStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, &store.Record{Fields: map[string]string{"healthy_pods": "{}"}}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := s.Write(ctx, &store.Record{Fields: map[string]string{"healthy_pods": `{"a":[]}`}})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expect ErrConflict, got %v", err)
	}
}
