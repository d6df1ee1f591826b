package pipeline

import (
	"context"
	"testing"
	"time"

	"voicebank-server/internal/observability"
)

func TestNew_RequiresCallerChannels(t *testing.T) {
	if _, err := New(nil, nil, 16, observability.NewLogger()); err == nil {
		t.Fatal("expected error for nil caller channels")
	}
}

func TestStart_RequiresProvider(t *testing.T) {
	callerIn := make(chan []byte)
	callerOut := make(chan []byte)
	p, err := New(callerIn, callerOut, 16, observability.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error when no provider is connected")
	}
}

func TestPipeline_ForwardsBothDirections(t *testing.T) {
	callerIn := make(chan []byte, 4)
	callerOut := make(chan []byte, 4)
	providerIn := make(chan []byte, 4)
	providerOut := make(chan []byte, 4)

	p, err := New(callerIn, callerOut, 16, observability.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.ConnectProvider(providerIn, providerOut); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	callerIn <- []byte{1, 2, 3}
	select {
	case got := <-providerIn:
		if len(got) != 3 {
			t.Errorf("unexpected chunk %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("caller audio never reached provider")
	}

	providerOut <- []byte{4, 5}
	select {
	case got := <-callerOut:
		if len(got) != 2 {
			t.Errorf("unexpected chunk %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("provider audio never reached caller")
	}

	stats := p.GetStats()
	if stats.BytesFromCaller != 3 || stats.BytesFromProvider != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestPipeline_ProviderSwap(t *testing.T) {
	callerIn := make(chan []byte, 4)
	callerOut := make(chan []byte, 4)
	firstIn := make(chan []byte, 4)
	firstOut := make(chan []byte)
	secondIn := make(chan []byte, 4)
	secondOut := make(chan []byte, 4)

	p, err := New(callerIn, callerOut, 16, observability.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.ConnectProvider(firstIn, firstOut); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	if err := p.ConnectProvider(secondIn, secondOut); err != nil {
		t.Fatal(err)
	}

	callerIn <- []byte{9}
	select {
	case <-secondIn:
	case <-time.After(time.Second):
		t.Fatal("caller audio never reached the swapped provider")
	}

	if swaps := p.GetStats().ProviderSwaps; swaps != 1 {
		t.Errorf("expected 1 swap, got %d", swaps)
	}
}

func TestStop_Terminates(t *testing.T) {
	callerIn := make(chan []byte)
	callerOut := make(chan []byte)
	providerIn := make(chan []byte, 1)
	providerOut := make(chan []byte)

	p, err := New(callerIn, callerOut, 16, observability.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.ConnectProvider(providerIn, providerOut); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not terminate the pipeline")
	}
}
