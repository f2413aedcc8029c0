package service

import (
	"context"
	"smartlinc-bridge/internal/domain/model"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Fetch(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

type reply struct {
	body string
	err  error
}

// scriptedGateway replays a per-path sequence of replies, repeating the
// last one. Unscripted paths answer with an empty body.
type scriptedGateway struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   map[string]int
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{
		replies: make(map[string][]reply),
		calls:   make(map[string]int),
	}
}

func (g *scriptedGateway) script(path string, replies ...reply) *scriptedGateway {
	g.replies[path] = append(g.replies[path], replies...)
	return g
}

func (g *scriptedGateway) Fetch(ctx context.Context, path string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.calls[path]
	g.calls[path]++
	seq := g.replies[path]
	if len(seq) == 0 {
		return "", nil
	}
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx].body, seq[idx].err
}

func (g *scriptedGateway) count(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

type countingProgress struct {
	calls int
	err   error
}

func (p *countingProgress) AwaitProgress(ctx context.Context) error {
	p.calls++
	return p.err
}

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Get(ctx context.Context) (*model.Config, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*model.Config)
	return cfg, args.Error(1)
}

func (m *MockRepo) Save(ctx context.Context, cfg *model.Config) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func bs(hex string) reply {
	return reply{body: "<response><BS>" + hex + "</BS></response>"}
}

func repeat(r reply, n int) []reply {
	out := make([]reply, n)
	for i := range out {
		out[i] = r
	}
	return out
}
