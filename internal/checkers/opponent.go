package checkers

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// DifficultyPreset tunes the computer opponent. Medium and hard share the
// capture-preferring move logic; the product has never shipped a lookahead
// tier, so hard differs only in pacing and rating anchor.
type DifficultyPreset struct {
	Name           string
	PreferCaptures bool
	RandomLanding  bool          // pick the destination at random too (easy tier)
	ReplyDelay     time.Duration // pacing before the reply is shown, not a rules concern
	ApproxRating   int           // rating anchor used for profile updates
}

var DefaultPresets = map[string]DifficultyPreset{
	"easy": {
		Name:          "easy",
		RandomLanding: true,
		ReplyDelay:    600 * time.Millisecond,
		ApproxRating:  600,
	},
	"medium": {
		Name:           "medium",
		PreferCaptures: true,
		ReplyDelay:     800 * time.Millisecond,
		ApproxRating:   900,
	},
	"hard": {
		Name:           "hard",
		PreferCaptures: true,
		ReplyDelay:     1000 * time.Millisecond,
		ApproxRating:   1200,
	},
}

func GetPreset(name string) (DifficultyPreset, error) {
	p, ok := DefaultPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DifficultyPreset{}, fmt.Errorf("unknown difficulty preset: %s", name)
	}
	return p, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(DefaultPresets))
	for name := range DefaultPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Policy selects one move per computer turn. Randomness is injected so
// opponent behavior is reproducible under test.
type Policy struct {
	preset DifficultyPreset
	mu     sync.Mutex
	rand   *rand.Rand
}

// NewPolicy builds a policy from a preset; a nil source seeds from the clock.
func NewPolicy(preset DifficultyPreset, src rand.Source) *Policy {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Policy{preset: preset, rand: rand.New(src)}
}

func (p *Policy) Preset() DifficultyPreset { return p.preset }

// ChooseMove picks a hop for side. Easy: uniform over movable pieces, then
// uniform over that piece's destinations. Capture-preferring tiers: uniform
// over pieces with a capture available, taking the first enumerated capture;
// with no captures anywhere, uniform over movable pieces taking the first
// enumerated destination. ok is false when the side has no move at all.
func (p *Policy) ChooseMove(b *Board, side Player) (from, to int, ok bool) {
	movers := b.Movers(side)
	if len(movers) == 0 {
		return 0, 0, false
	}

	if p.preset.PreferCaptures {
		var capturers []int
		for _, idx := range movers {
			if len(b.Captures(idx)) > 0 {
				capturers = append(capturers, idx)
			}
		}
		if len(capturers) > 0 {
			from = capturers[p.intn(len(capturers))]
			return from, b.Captures(from)[0], true
		}
		from = movers[p.intn(len(movers))]
		return from, b.Destinations(from)[0], true
	}

	from = movers[p.intn(len(movers))]
	dests := b.Destinations(from)
	return from, dests[p.intn(len(dests))], true
}

func (p *Policy) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rand.Intn(n)
}
