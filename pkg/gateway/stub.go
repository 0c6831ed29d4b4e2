package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubProvider is an in-memory provider for development and tests. Verify
// answers from the Statuses map, defaulting to pending.
type StubProvider struct {
	mu              sync.Mutex
	Statuses        map[string]Status
	InitializeCalls int
	VerifyCalls     int
	InitializeErr   error
	VerifyErr       error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{Statuses: make(map[string]Status)}
}

func (s *StubProvider) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InitializeCalls++
	if s.InitializeErr != nil {
		return nil, s.InitializeErr
	}
	ref := fmt.Sprintf("stub_%d", time.Now().UnixNano())
	return &InitializeResponse{
		AuthorizationURL: "https://checkout.stub/" + ref,
		Reference:        ref,
	}, nil
}

func (s *StubProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VerifyCalls++
	if s.VerifyErr != nil {
		return nil, s.VerifyErr
	}
	st, ok := s.Statuses[reference]
	if !ok {
		st = StatusPending
	}
	return &VerifyResult{Status: st, GatewayStatus: string(st)}, nil
}

// SetStatus programs the verify answer for a reference.
func (s *StubProvider) SetStatus(reference string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Statuses[reference] = st
}
