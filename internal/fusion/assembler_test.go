package fusion

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

type stubProvider struct {
	profile store.WeightProfile
	asked   []string
}

func (s *stubProvider) GetWeights(contextType string) store.WeightProfile {
	s.asked = append(s.asked, contextType)
	p := s.profile
	p.ContextType = contextType
	return p
}

type panicProvider struct{}

func (panicProvider) GetWeights(string) store.WeightProfile {
	panic("provider exploded")
}

func newTestAssembler(p WeightProvider) *Assembler {
	return New(p, DefaultConfig(), logging.NewNop())
}

func defaultStub() *stubProvider {
	return &stubProvider{profile: store.WeightProfile{SymbolicWeight: 0.7, NeuralWeight: 0.3}}
}

func TestAssembleNeuralEnhanced(t *testing.T) {
	provider := defaultStub()
	a := newTestAssembler(provider)

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Emotion: "verdrietig", Confidence: 0.8},
		Neural:     NeuralCandidate{Response: "Je voelt je verdrietig vandaag.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.Strategy != StrategyNeuralEnhanced {
		t.Fatalf("expected neural_enhanced, got %s", result.Strategy)
	}
	if result.FusedResponse != "Je voelt je verdrietig vandaag." {
		t.Fatalf("neural_enhanced must use the neural response verbatim, got %q", result.FusedResponse)
	}
	if result.PreservationScore != 1.0 {
		t.Fatalf("expected preservation 1.0, got %f", result.PreservationScore)
	}
	// 0.8*0.7 + 0.7*0.3
	if math.Abs(result.FusedConfidence-0.77) > 1e-9 {
		t.Fatalf("expected fused confidence 0.77, got %f", result.FusedConfidence)
	}
}

func TestAssembleSymbolicFallbackOnPoorPreservation(t *testing.T) {
	a := newTestAssembler(defaultStub())

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Confidence: 0.8},
		Neural:     NeuralCandidate{Response: "Compleet ander onderwerp hier.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.Strategy != StrategySymbolicFallback {
		t.Fatalf("expected symbolic_fallback, got %s", result.Strategy)
	}
	if result.FusedResponse != "Je voelt je verdrietig." {
		t.Fatalf("fallback must use the symbolic response verbatim, got %q", result.FusedResponse)
	}
}

func TestAssembleSafetyOverride(t *testing.T) {
	// Learned weights lean neural; a failed validation must dominate them.
	provider := &stubProvider{profile: store.WeightProfile{SymbolicWeight: 0.2, NeuralWeight: 0.8}}
	a := newTestAssembler(provider)

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Confidence: 0.8},
		Neural:     NeuralCandidate{Response: "Compleet ander onderwerp hier.", Confidence: 0.9},
		Validation: ValidationSignal{Validated: false, ConstraintsOK: true},
	})

	if result.SymbolicWeight != 0.9 || math.Abs(result.NeuralWeight-0.1) > 1e-9 {
		t.Fatalf("expected forced 0.9/0.1 weights, got %f/%f", result.SymbolicWeight, result.NeuralWeight)
	}
	if result.Strategy != StrategySymbolicFallback {
		t.Fatalf("low preservation under safety override must fall back, got %s", result.Strategy)
	}
	if len(provider.asked) != 1 || provider.asked[0] != ContextCrisis {
		t.Fatalf("validation failure must classify as crisis, asked %v", provider.asked)
	}
}

func TestAssembleLowSymbolicConfidenceNudge(t *testing.T) {
	a := newTestAssembler(defaultStub())

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Confidence: 0.5},
		Neural:     NeuralCandidate{Response: "Compleet ander onderwerp hier.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if math.Abs(result.SymbolicWeight-0.6) > 1e-9 {
		t.Fatalf("expected nudged symbolic weight 0.6, got %f", result.SymbolicWeight)
	}
	if math.Abs(result.SymbolicWeight+result.NeuralWeight-1.0) > 1e-9 {
		t.Fatal("nudged weights must sum to 1")
	}
}

func TestAssembleNudgeFloor(t *testing.T) {
	provider := &stubProvider{profile: store.WeightProfile{SymbolicWeight: 0.55, NeuralWeight: 0.45}}
	a := newTestAssembler(provider)

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Confidence: 0.5},
		Neural:     NeuralCandidate{Response: "Compleet ander onderwerp hier.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.SymbolicWeight != 0.5 {
		t.Fatalf("nudge must floor at 0.5, got %f", result.SymbolicWeight)
	}
}

func TestAssembleBlacklistVeto(t *testing.T) {
	a := newTestAssembler(defaultStub())

	// Identical responses give preservation 1.0, yet the phrase vetoes.
	text := "Het is begrijpelijk dat je moe bent."
	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: text, Confidence: 0.8},
		Neural:     NeuralCandidate{Response: text, Confidence: 0.9},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.Strategy != StrategySymbolicFallback {
		t.Fatalf("blacklist must veto, got %s", result.Strategy)
	}
	if result.PreservationScore != 1.0 {
		t.Fatalf("veto must not distort the preservation score, got %f", result.PreservationScore)
	}
}

func TestAssembleWeightedBlend(t *testing.T) {
	a := newTestAssembler(defaultStub())

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig. Dat mag er zijn.", Confidence: 0.8},
		Neural:     NeuralCandidate{Response: "Je voelt je verdrietig vandaag. Morgen beter.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.Strategy != StrategyWeightedBlend {
		t.Fatalf("expected weighted_blend at preservation 0.5, got %s", result.Strategy)
	}
	if result.FusedResponse == "" {
		t.Fatal("blend must produce a response")
	}
}

func TestAssembleNeverPanics(t *testing.T) {
	a := newTestAssembler(panicProvider{})

	result := a.Assemble(Context{
		Symbolic:   SymbolicCandidate{Response: "Je voelt je verdrietig.", Confidence: 0.8},
		Neural:     NeuralCandidate{Response: "Je voelt je verdrietig vandaag.", Confidence: 0.7},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	})

	if result.Strategy != StrategySymbolicFallback {
		t.Fatalf("panic must degrade to symbolic_fallback, got %s", result.Strategy)
	}
	if result.FusedResponse != "Je voelt je verdrietig." {
		t.Fatalf("panic must serve the symbolic response, got %q", result.FusedResponse)
	}
	if result.SymbolicWeight != 1.0 || result.NeuralWeight != 0.0 {
		t.Fatalf("panic fallback weights must be 1.0/0.0, got %f/%f", result.SymbolicWeight, result.NeuralWeight)
	}
	if result.FusedConfidence != 0.8 {
		t.Fatalf("panic fallback confidence must be the symbolic confidence, got %f", result.FusedConfidence)
	}
	if result.PreservationScore != 0.0 {
		t.Fatalf("panic fallback preservation must be 0, got %f", result.PreservationScore)
	}
}

func TestAssembleFetchesClassifiedContextType(t *testing.T) {
	provider := defaultStub()
	a := newTestAssembler(provider)

	ctx := Context{
		Symbolic:   SymbolicCandidate{Response: "Hallo daar.", Emotion: "neutral", Confidence: 0.95},
		Neural:     NeuralCandidate{Response: "Hallo daar vandaag.", Confidence: 0.5},
		Validation: ValidationSignal{Validated: true, ConstraintsOK: true},
	}
	a.Assemble(ctx)

	if len(provider.asked) != 1 || provider.asked[0] != ContextGreeting {
		t.Fatalf("expected greeting lookup, asked %v", provider.asked)
	}
}
