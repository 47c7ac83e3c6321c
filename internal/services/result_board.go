package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Outcome is the accepted result of one calculation for a session.
type Outcome struct {
	Generation uint64
	Report     *MarketReport
	Err        error
	FinishedAt time.Time
}

// DefaultSessionTTL is how long a session with nothing running is kept after
// its last use.
const DefaultSessionTTL = 30 * time.Minute

type sessionSlot struct {
	latest   uint64
	inflight int
	accepted *Outcome
	touched  time.Time
}

// ResultBoard tracks calculation generations per session so that a calculation
// finishing after a newer one has started is discarded. Only the most recently
// begun generation may publish.
//
// Sessions idle for longer than the TTL are dropped. A session with a
// calculation still running is never dropped, so its generation counter is not
// reset while an older calculation can still publish.
type ResultBoard struct {
	mu        sync.Mutex
	sessions  map[string]*sessionSlot
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewResultBoard returns a board that evicts sessions idle for ttl. A
// non-positive ttl selects DefaultSessionTTL.
func NewResultBoard(ttl time.Duration) *ResultBoard {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &ResultBoard{
		sessions: make(map[string]*sessionSlot),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin starts a new generation for session and returns its number.
func (b *ResultBoard) Begin(session string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweep(now)

	slot, ok := b.sessions[session]
	if !ok {
		slot = &sessionSlot{}
		b.sessions[session] = slot
	}
	slot.latest++
	slot.inflight++
	slot.touched = now
	return slot.latest
}

// Publish records the outcome of generation gen. It returns false, and drops
// the outcome, when a newer generation has begun since.
func (b *ResultBoard) Publish(session string, gen uint64, report *MarketReport, err error) (Outcome, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := Outcome{Generation: gen, Report: report, Err: err}

	slot, ok := b.sessions[session]
	if !ok {
		return out, false
	}
	if slot.inflight > 0 {
		slot.inflight--
	}
	now := b.now()
	slot.touched = now
	if gen != slot.latest {
		return out, false
	}
	out.FinishedAt = now
	slot.accepted = &out
	return out, true
}

// Latest returns the accepted outcome for session.
func (b *ResultBoard) Latest(session string) (Outcome, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweep(now)

	slot, ok := b.sessions[session]
	if !ok {
		return Outcome{}, false
	}
	if b.idle(slot, now) {
		delete(b.sessions, session)
		return Outcome{}, false
	}
	if slot.accepted == nil {
		return Outcome{}, false
	}
	slot.touched = now
	return *slot.accepted, true
}

// Len reports how many sessions the board currently holds.
func (b *ResultBoard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *ResultBoard) idle(slot *sessionSlot, now time.Time) bool {
	return slot.inflight == 0 && now.Sub(slot.touched) > b.ttl
}

// sweep drops idle sessions at most every quarter TTL. b.mu must be held.
func (b *ResultBoard) sweep(now time.Time) {
	if now.Sub(b.lastSweep) < b.ttl/4 {
		return
	}
	b.lastSweep = now
	for key, slot := range b.sessions {
		if b.idle(slot, now) {
			delete(b.sessions, key)
		}
	}
}

// MarketSearcher is satisfied by *MarketFinder.
type MarketSearcher interface {
	FindBestMarkets(ctx context.Context, req FindMarketsRequest) (*MarketReport, error)
}

// SessionCalculator runs market searches for sessions through a ResultBoard.
type SessionCalculator struct {
	Finder MarketSearcher
	Board  *ResultBoard
}

// Calculate runs one search for session. accepted is false when a newer
// calculation for the same session began before this one finished; the result
// is then discarded and must not be shown.
func (s *SessionCalculator) Calculate(
	ctx context.Context,
	session string,
	req FindMarketsRequest,
) (outcome Outcome, accepted bool) {
	gen := s.Board.Begin(session)
	defer func() {
		// A panicking search still settles its generation.
		if r := recover(); r != nil {
			s.Board.Publish(session, gen, nil, fmt.Errorf("calculate: search panicked: %v", r))
			panic(r)
		}
	}()

	report, err := s.Finder.FindBestMarkets(ctx, req)
	return s.Board.Publish(session, gen, report, err)
}
