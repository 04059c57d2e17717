// Package emotion implements the stateless emotion and dopamine response
// generators. Both are pure table lookups plus bounded multiplicative
// adjustments; the only nondeterminism is the perturbation drawn from
// the injected RandomSource.
package emotion

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dopamind/dopamind/internal/domain"
)

const (
	baseIntensity     = 0.5
	baseDopamine      = 0.3
	perturbation      = 0.1
	repeatWindow      = 5
	repeatThreshold   = 2
	defaultConfidence = 0.5
	maxConfidence     = 0.9
)

// RandomSource yields uniform floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

// Generator produces emotion and dopamine observations.
// It is safe for concurrent use when its RandomSource is.
type Generator struct {
	rand RandomSource
	now  func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom injects the perturbation source.
func WithRandom(r RandomSource) Option {
	return func(g *Generator) { g.rand = r }
}

// WithSeed uses a deterministic PCG source guarded by a mutex.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rand = &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	}
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a generator. Defaults to the global math/rand/v2 source
// and time.Now.
func New(opts ...Option) *Generator {
	g := &Generator{rand: globalRand{}, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Now returns the generator clock's current time.
func (g *Generator) Now() time.Time { return g.now() }

// ─── Emotion ────────────────────────────────────────────────────────────────

// Emotion simulates the emotional response to a reward.
func (g *Generator) Emotion(cat domain.RewardCategory, ctx domain.Context, history []domain.SessionEvent) domain.EmotionObservation {
	intensity := BaseIntensity(cat, ctx, history)
	intensity += (g.rand.Float64()*2 - 1) * perturbation
	intensity = domain.Clamp(intensity, 0, 1)

	return domain.EmotionObservation{
		Emotion:    cat.DefaultEmotion(),
		Intensity:  intensity,
		Confidence: Confidence(len(history)),
		Timestamp:  g.now(),
		Context:    ctx,
	}
}

// BaseIntensity is the pre-perturbation intensity, already clamped.
func BaseIntensity(cat domain.RewardCategory, ctx domain.Context, history []domain.SessionEvent) float64 {
	intensity := baseIntensity + cat.Profile().IntensityModifier
	intensity = applyContext(intensity, ctx)

	if len(history) > 0 {
		recent := history
		if len(recent) > repeatWindow {
			recent = recent[len(recent)-repeatWindow:]
		}
		repeats := 0
		for _, ev := range recent {
			if ev.Type == string(cat) {
				repeats++
			}
		}
		// Diminishing returns for the same reward over and over.
		if repeats > repeatThreshold {
			intensity *= 0.9
		}
	}

	return domain.Clamp(intensity, 0, 1)
}

// Confidence grows by 0.1 per history entry from 0.3 and caps at 0.9.
// An empty history yields 0.5.
func Confidence(historyLen int) float64 {
	if historyLen == 0 {
		return defaultConfidence
	}
	return min(maxConfidence, 0.3+float64(historyLen)*0.1)
}

// applyContext runs the fatigue, stress and mood rules in order.
func applyContext(v float64, ctx domain.Context) float64 {
	if ctx.Fatigued() {
		v *= 0.8
	}
	if ctx.Stressed() {
		v *= 0.9
	}
	if ctx.Positive() {
		v *= 1.1
	}
	return v
}

// ─── Dopamine ───────────────────────────────────────────────────────────────

// Dopamine derives the dopamine response from an emotion observation.
func (g *Generator) Dopamine(cat domain.RewardCategory, emo domain.EmotionObservation, ctx domain.Context) domain.DopamineObservation {
	return Dopamine(cat, emo, ctx)
}

// Dopamine is a pure function of its inputs.
func Dopamine(cat domain.RewardCategory, emo domain.EmotionObservation, ctx domain.Context) domain.DopamineObservation {
	profile := cat.Profile()

	baseline := domain.Clamp(applyContext(baseDopamine, ctx), 0.1, 0.5)
	peak := domain.Clamp(profile.PeakBase*(0.5+emo.Intensity*0.5), 0.3, 1.0)

	return domain.DopamineObservation{
		Baseline:        baseline,
		Peak:            peak,
		Duration:        profile.DurationSeconds,
		DecayRate:       0.05 + emo.Intensity*0.1, // intense emotions fade faster
		EmotionalImpact: emo.Intensity * emo.Confidence,
	}
}

// Simulate runs both generators for one reward.
func (g *Generator) Simulate(cat domain.RewardCategory, ctx domain.Context, history []domain.SessionEvent) (domain.EmotionObservation, domain.DopamineObservation) {
	emo := g.Emotion(cat, ctx, history)
	return emo, g.Dopamine(cat, emo, ctx)
}

// ─── Random sources ─────────────────────────────────────────────────────────

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
