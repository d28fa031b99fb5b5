package filter

import (
	"math"
	"testing"
)

func TestOneEuro_FirstSamplePassesThrough(t *testing.T) {
	f := New(DefaultConfig())

	got := f.Filter(0.42, 0)
	if got != 0.42 {
		t.Errorf("first output = %f, want raw value 0.42", got)
	}
}

func TestOneEuro_ConvergesOnConstantInput(t *testing.T) {
	f := New(DefaultConfig())

	const target = 0.75
	var out float64
	for i := 0; i < 120; i++ {
		out = f.Filter(target, float64(i)*33.3)
	}

	if math.Abs(out-target) > 1e-6 {
		t.Errorf("after constant input, output = %f, want %f", out, target)
	}
}

func TestOneEuro_ConstantInputNeverDiverges(t *testing.T) {
	f := New(DefaultConfig())

	const target = -0.3
	f.Filter(0.9, 0)

	prevErr := math.Abs(f.Value() - target)
	for i := 1; i < 60; i++ {
		f.Filter(target, float64(i)*33.3)
		err := math.Abs(f.Value() - target)
		if err > prevErr+1e-12 {
			t.Fatalf("frame %d: error grew from %f to %f", i, prevErr, err)
		}
		prevErr = err
	}
}

func TestOneEuro_NonAdvancingTimeKeepsRate(t *testing.T) {
	f := New(DefaultConfig())

	f.Filter(0.0, 0)
	f.Filter(0.1, 100) // rate becomes 10 Hz

	rateBefore := f.rate

	// Duplicate and regressing timestamps must not disturb the rate estimate.
	f.Filter(0.2, 100)
	if f.rate != rateBefore {
		t.Errorf("duplicate timestamp changed rate: %f -> %f", rateBefore, f.rate)
	}

	f.Filter(0.3, 50)
	if f.rate != rateBefore {
		t.Errorf("regressing timestamp changed rate: %f -> %f", rateBefore, f.rate)
	}
}

func TestOneEuro_FastMotionTracksCloser(t *testing.T) {
	slow := New(DefaultConfig())
	fast := New(DefaultConfig())

	// Same step input, but feed the fast filter a preceding ramp so its
	// derivative estimate is large when the step lands.
	slow.Filter(0, 0)
	fast.Filter(0, 0)
	for i := 1; i <= 10; i++ {
		slow.Filter(0, float64(i)*33.3)
		fast.Filter(float64(i)*0.1, float64(i)*33.3)
	}

	slowOut := slow.Filter(2.0, 11*33.3)
	fastOut := fast.Filter(2.0, 11*33.3)

	if math.Abs(fastOut-2.0) >= math.Abs(slowOut-2.0) {
		t.Errorf("fast-moving signal should track closer: fast=%f slow=%f", fastOut, slowOut)
	}
}

func TestOneEuro_AxesIndependent(t *testing.T) {
	fx := New(DefaultConfig())
	fy := New(DefaultConfig())

	fx.Filter(0.5, 0)
	fy.Filter(-0.5, 0)

	x := fx.Filter(0.5, 33)
	y := fy.Filter(-0.5, 33)

	if x != 0.5 || y != -0.5 {
		t.Errorf("axes leaked state: x=%f y=%f", x, y)
	}
}

func TestNew_ReplacesInvalidConfig(t *testing.T) {
	f := New(Config{Rate: -1, MinCutoff: 0, Beta: -0.5, DerivCutoff: 0})

	def := DefaultConfig()
	if f.config.Rate != def.Rate {
		t.Errorf("Rate = %f, want default %f", f.config.Rate, def.Rate)
	}
	if f.config.MinCutoff != def.MinCutoff {
		t.Errorf("MinCutoff = %f, want default %f", f.config.MinCutoff, def.MinCutoff)
	}
	if f.config.Beta != def.Beta {
		t.Errorf("Beta = %f, want default %f", f.config.Beta, def.Beta)
	}
	if f.config.DerivCutoff != def.DerivCutoff {
		t.Errorf("DerivCutoff = %f, want default %f", f.config.DerivCutoff, def.DerivCutoff)
	}
}
