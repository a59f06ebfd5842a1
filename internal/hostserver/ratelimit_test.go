package hostserver

import "testing"

func TestPacketLimiterAllowsWithinBurst(t *testing.T) {
	l := NewPacketLimiter(1, 3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4:5000") {
			t.Fatalf("expected packet %d to be allowed within burst", i)
		}
	}
}

func TestPacketLimiterRejectsBeyondBurst(t *testing.T) {
	l := NewPacketLimiter(0.001, 1)
	defer l.Stop()

	if !l.Allow("1.2.3.4:5000") {
		t.Fatal("expected first packet to be allowed")
	}
	if l.Allow("1.2.3.4:5000") {
		t.Fatal("expected second immediate packet to be rejected once burst is exhausted")
	}
}

func TestPacketLimiterTracksAddressesIndependently(t *testing.T) {
	l := NewPacketLimiter(0.001, 1)
	defer l.Stop()

	if !l.Allow("1.1.1.1:1") {
		t.Fatal("expected first address's first packet to be allowed")
	}
	if !l.Allow("2.2.2.2:2") {
		t.Fatal("expected a different address to have its own independent bucket")
	}
}
