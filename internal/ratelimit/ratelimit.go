// Package ratelimit gates outbound user actions with a per-kind cooldown.
// It only protects against accidental rapid re-submission; the host still
// validates everything it receives.
package ratelimit

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

type Kind string

const (
	KindTab             Kind = "tab"
	KindMode            Kind = "mode"
	KindStatsMode       Kind = "stats_mode"
	KindLeaderboardMode Kind = "leaderboard_mode"
	KindSearch          Kind = "search"
	KindCancelSearch    Kind = "cancel_search"
	KindReady           Kind = "ready"
	KindInvite          Kind = "invite"
	KindLeaveGroup      Kind = "leave_group"
	KindKick            Kind = "kick"
	KindAcceptInvite    Kind = "accept_invite"
	KindDeclineInvite   Kind = "decline_invite"
)

const DefaultCooldown = time.Second

// DefaultCooldowns returns a fresh copy of the built-in table.
func DefaultCooldowns() map[Kind]time.Duration {
	return map[Kind]time.Duration{
		KindTab:             500 * time.Millisecond,
		KindMode:            1500 * time.Millisecond,
		KindStatsMode:       5 * time.Second,
		KindLeaderboardMode: 5 * time.Second,
		KindSearch:          3 * time.Second,
		KindCancelSearch:    3 * time.Second,
		KindReady:           1500 * time.Millisecond,
		KindInvite:          2 * time.Second,
		KindLeaveGroup:      2 * time.Second,
		KindKick:            time.Second,
		KindAcceptInvite:    time.Second,
		KindDeclineInvite:   500 * time.Millisecond,
	}
}

// Limiter is owned by one event loop and is not safe for concurrent use.
type Limiter struct {
	clock     clock.Clock
	cooldowns map[Kind]time.Duration
	fallback  time.Duration
	last      map[Kind]time.Time
}

func New(clk clock.Clock, cooldowns map[Kind]time.Duration, fallback time.Duration) *Limiter {
	if clk == nil {
		clk = clock.New()
	}
	if cooldowns == nil {
		cooldowns = DefaultCooldowns()
	}
	if fallback <= 0 {
		fallback = DefaultCooldown
	}
	return &Limiter{
		clock:     clk,
		cooldowns: cooldowns,
		fallback:  fallback,
		last:      make(map[Kind]time.Time),
	}
}

func (l *Limiter) Cooldown(k Kind) time.Duration {
	if d, ok := l.cooldowns[k]; ok {
		return d
	}
	return l.fallback
}

// TryConsume admits k and records the attempt, or refuses without touching
// any state.
func (l *Limiter) TryConsume(k Kind) bool {
	now := l.clock.Now()
	if last, ok := l.last[k]; ok && now.Sub(last) < l.Cooldown(k) {
		return false
	}
	l.last[k] = now
	return true
}

// Remaining is how long k stays blocked; zero when it would pass now.
func (l *Limiter) Remaining(k Kind) time.Duration {
	last, ok := l.last[k]
	if !ok {
		return 0
	}
	return max(0, l.Cooldown(k)-l.clock.Now().Sub(last))
}

// RemainingSeconds rounds Remaining up to whole seconds.
func (l *Limiter) RemainingSeconds(k Kind) int {
	return int(math.Ceil(l.Remaining(k).Seconds()))
}

// Reset lets the next k through immediately, e.g. after the host reports
// that a search was cancelled.
func (l *Limiter) Reset(k Kind) {
	delete(l.last, k)
}

func (l *Limiter) ResetAll() {
	clear(l.last)
}
