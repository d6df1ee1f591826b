// Package pipeline pumps audio between a caller's media stream and a voice
// provider. The caller side is fixed for the life of a call; the provider
// side can be swapped, for example after language detection picks a
// different voice.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voicebank-server/internal/observability"

	"github.com/google/uuid"
)

// sendTimeout bounds a blocked channel send so a slow consumer drops audio
// instead of stalling the call.
const sendTimeout = 100 * time.Millisecond

type Pipeline struct {
	id     string
	logger *observability.Logger

	callerIn  <-chan []byte
	callerOut chan []byte

	providerIn  chan []byte
	providerOut <-chan []byte
	providerMu  sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.RWMutex
	stats   Stats

	bufferSize int
}

// Stats are per-call byte counters, read for the end-of-call log line.
type Stats struct {
	BytesFromCaller   int64
	BytesToCaller     int64
	BytesFromProvider int64
	BytesToProvider   int64
	ProviderSwaps     int
	StartTime         time.Time
	EndTime           time.Time
}

// New creates a pipeline bound to the caller's channels.
func New(callerIn <-chan []byte, callerOut chan []byte, bufferSize int, logger *observability.Logger) (*Pipeline, error) {
	if callerIn == nil || callerOut == nil {
		return nil, fmt.Errorf("caller channels cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		id:         uuid.New().String(),
		logger:     logger,
		callerIn:   callerIn,
		callerOut:  callerOut,
		ctx:        ctx,
		cancel:     cancel,
		bufferSize: bufferSize,
		stats:      Stats{StartTime: time.Now()},
	}, nil
}

func (p *Pipeline) ID() string {
	return p.id
}

// ConnectProvider attaches or replaces the provider side. Safe to call while
// the pipeline is running.
func (p *Pipeline) ConnectProvider(in chan []byte, out <-chan []byte) error {
	if in == nil || out == nil {
		return fmt.Errorf("provider channels cannot be nil")
	}

	p.providerMu.Lock()
	defer p.providerMu.Unlock()

	if p.providerIn != nil {
		p.statsMu.Lock()
		p.stats.ProviderSwaps++
		swaps := p.stats.ProviderSwaps
		p.statsMu.Unlock()
		p.logger.Info(p.ctx, fmt.Sprintf("swapping provider on pipeline %s (swap #%d)", p.id, swaps))
	}

	p.providerIn = in
	p.providerOut = out
	return nil
}

// Start launches both pump directions. A provider must be connected first.
func (p *Pipeline) Start(ctx context.Context) error {
	p.providerMu.RLock()
	connected := p.providerIn != nil && p.providerOut != nil
	p.providerMu.RUnlock()
	if !connected {
		return fmt.Errorf("provider not connected")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.ctx = runCtx
	oldCancel := p.cancel
	p.cancel = func() {
		cancel()
		oldCancel()
	}

	p.logger.Info(ctx, fmt.Sprintf("starting audio pipeline %s", p.id))
	p.wg.Add(2)
	go p.pumpCallerToProvider()
	go p.pumpProviderToCaller()
	return nil
}

func (p *Pipeline) pumpCallerToProvider() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case audio, ok := <-p.callerIn:
			if !ok {
				p.logger.Info(p.ctx, "caller input closed, ending provider stream")
				p.providerMu.RLock()
				if p.providerIn != nil {
					close(p.providerIn)
				}
				p.providerMu.RUnlock()
				return
			}

			p.statsMu.Lock()
			p.stats.BytesFromCaller += int64(len(audio))
			p.stats.BytesToProvider += int64(len(audio))
			p.statsMu.Unlock()

			p.providerMu.RLock()
			providerIn := p.providerIn
			p.providerMu.RUnlock()
			if providerIn == nil {
				continue
			}

			select {
			case providerIn <- audio:
			case <-time.After(sendTimeout):
				p.logger.Warn(p.ctx, "provider buffer full, dropping audio chunk")
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pipeline) pumpProviderToCaller() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		p.providerMu.RLock()
		providerOut := p.providerOut
		p.providerMu.RUnlock()

		if providerOut == nil {
			// Between providers during a swap.
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(sendTimeout):
			}
			continue
		}

		select {
		case <-p.ctx.Done():
			return
		case audio, ok := <-providerOut:
			if !ok {
				// Provider gone; keep the call alive for a replacement.
				p.logger.Info(p.ctx, "provider output closed")
				p.providerMu.Lock()
				p.providerOut = nil
				p.providerMu.Unlock()
				continue
			}

			p.statsMu.Lock()
			p.stats.BytesFromProvider += int64(len(audio))
			p.stats.BytesToCaller += int64(len(audio))
			p.statsMu.Unlock()

			select {
			case p.callerOut <- audio:
			case <-time.After(sendTimeout):
				p.logger.Warn(p.ctx, "caller buffer full, dropping audio chunk")
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Stop cancels both pumps and waits for them to exit.
func (p *Pipeline) Stop() {
	p.cancel()
	p.wg.Wait()

	p.statsMu.Lock()
	p.stats.EndTime = time.Now()
	p.statsMu.Unlock()

	p.logger.Info(p.ctx, fmt.Sprintf("audio pipeline %s stopped", p.id))
}

// GetStats returns a snapshot of the byte counters.
func (p *Pipeline) GetStats() Stats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	stats := p.stats
	if stats.EndTime.IsZero() {
		stats.EndTime = time.Now()
	}
	return stats
}
