package singleflight

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Concurrent callers for one key run fn once and share the result.
func TestGroup_Coalesces(t *testing.T) {
	t.Parallel()

	var (
		g     Group[uint64, string]
		calls atomic.Int32
	)
	release := make(chan struct{})
	fn := func() (string, error) {
		calls.Add(1)
		<-release
		return "page", nil
	}

	var eg errgroup.Group
	results := make([]string, 16)
	for i := range results {
		eg.Go(func() error {
			v, _, err := g.Do(context.Background(), 9, fn)
			results[i] = v
			return err
		})
	}
	// Wait until the leader is running before releasing it.
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := eg.Wait(); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if n := calls.Load(); n < 1 || n > 16 {
		t.Fatalf("fn calls = %d", n)
	}
	for i, v := range results {
		if v != "page" {
			t.Fatalf("result %d = %q", i, v)
		}
	}
	if g.InFlight() != 0 {
		t.Fatal("in-flight marker must be cleared")
	}
}

// A follower whose context ends stops waiting; the leader is unaffected.
func TestGroup_FollowerCancel(t *testing.T) {
	t.Parallel()

	var g Group[int, int]
	release := make(chan struct{})
	leader := make(chan error, 1)
	go func() {
		_, _, err := g.Do(context.Background(), 1, func() (int, error) {
			<-release
			return 0, errors.New("load failed")
		})
		leader <- err
	}()
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Do(ctx, 1, func() (int, error) { return 1, nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("follower err = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-leader; err == nil || err.Error() != "load failed" {
		t.Fatalf("leader err = %v", err)
	}
}

// The first caller giving up does not fail the callers still waiting.
func TestGroup_FirstCallerCancel(t *testing.T) {
	t.Parallel()

	var g Group[int, string]
	release := make(chan struct{})
	fn := func() (string, error) {
		<-release
		return "page", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := g.Do(ctx, 1, fn)
		first <- err
	}()
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan string, 1)
	go func() {
		v, _, err := g.Do(context.Background(), 1, fn)
		if err != nil {
			v = err.Error()
		}
		second <- v
	}()

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v, want context.Canceled", err)
	}
	close(release)
	if v := <-second; v != "page" {
		t.Fatalf("second caller got %q, want page", v)
	}
}

// A panicking fn releases every waiting caller with ErrPanicked.
func TestGroup_Panic(t *testing.T) {
	t.Parallel()

	var g Group[int, int]
	_, _, err := g.Do(context.Background(), 1, func() (int, error) { panic("torn page") })
	if !errors.Is(err, ErrPanicked) {
		t.Fatalf("err = %v, want ErrPanicked", err)
	}
	if g.InFlight() != 0 {
		t.Fatal("in-flight marker must be cleared after a panic")
	}

	v, _, err := g.Do(context.Background(), 1, func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Do after panic = %d, %v", v, err)
	}
}
