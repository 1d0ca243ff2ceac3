package audio

import "testing"

const testSampleRate = 48000.0

func TestAttackReachesPeakInOneTimeConstant(t *testing.T) {
	p := defaultADSRParams
	a := &adsr{}
	a.noteOn()
	samples := 0
	prev := 0.0
	for a.stage == envAttack {
		a.step(&p, testSampleRate)
		samples++
		if a.level < prev || a.level > 1 {
			t.Fatalf("level %v after %v at sample %d", a.level, prev, samples)
		}
		prev = a.level
		if samples > 10000 {
			t.Fatal("attack never ended")
		}
	}
	if a.level < attackDoneLevel {
		t.Errorf("expected at least %v, but got: %v", attackDoneLevel, a.level)
	}
	// 5 ms at 48 kHz
	if samples < 230 || samples > 250 {
		t.Errorf("expected about 240 samples, but got: %d", samples)
	}
}

func TestDecayToSustain(t *testing.T) {
	p := defaultADSRParams
	a := &adsr{}
	a.noteOn()
	for i := 0; i < 48000 && a.stage != envSustain; i++ {
		a.step(&p, testSampleRate)
	}
	expectEqual(t, a.stage, envSustain)
	if a.level < 0.8-decayDoneDelta || a.level > 0.8+decayDoneDelta {
		t.Errorf("expected about 0.8, but got: %v", a.level)
	}
	a.step(&p, testSampleRate)
	expectNearlyEqual(t, a.level, 0.8)
}

func TestSustainFollowsLiveChanges(t *testing.T) {
	p := defaultADSRParams
	a := &adsr{stage: envSustain, level: p.sustain}
	p.sustain = 0.3
	a.step(&p, testSampleRate)
	expectNearlyEqual(t, a.level, 0.3)
	p.sustain = 1.5
	a.step(&p, testSampleRate)
	expectNearlyEqual(t, a.level, 1)
}

func TestReleaseDiesOut(t *testing.T) {
	p := defaultADSRParams
	a := &adsr{stage: envSustain, level: p.sustain}
	a.noteOff()
	prev := a.level
	samples := 0
	for a.step(&p, testSampleRate) {
		samples++
		if a.level > prev || a.level < 0 {
			t.Fatalf("level %v after %v at sample %d", a.level, prev, samples)
		}
		prev = a.level
		if samples > 48000*10 {
			t.Fatal("release never ended")
		}
	}
	expectEqual(t, a.stage, envIdle)
	expectEqual(t, a.level, 0.0)
	// ln(0.8 / 1e-5) time constants of 100 ms
	if samples < 53000 || samples > 56000 {
		t.Errorf("expected about 54200 samples, but got: %d", samples)
	}
}

func TestStageCoefficientFloor(t *testing.T) {
	expectNearlyEqual(t, stageCoefficient(0, testSampleRate), stageCoefficient(1, testSampleRate))
	expectNearlyEqual(t, stageCoefficient(-5, testSampleRate), stageCoefficient(1, testSampleRate))
}

func TestADSRSet(t *testing.T) {
	p := defaultADSRParams
	expectNoError(t, p.set("attack", "12.5"))
	expectNoError(t, p.set("release", "300"))
	expectNearlyEqual(t, p.attack, 12.5)
	expectNearlyEqual(t, p.release, 300)
	if err := p.set("decay", "slow"); err == nil {
		t.Error("expected an error for a non-numeric value")
	}
}
