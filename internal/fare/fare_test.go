package fare

import (
	"testing"

	"github.com/example/ride-hailing/internal/models"
)

func TestEstimateKnownTrip(t *testing.T) {
	// 5 km, 10 minutes
	got := Estimate(5000, 600)
	want := map[models.VehicleClass]int{
		models.ClassCar:  135, // 50 + 5*11 + 10*3
		models.ClassAuto: 100, // 30 + 5*10 + 10*2
		models.ClassBike: 75,  // 20 + 5*8 + 10*1.5
	}
	for class, fare := range want {
		if got[class] != fare {
			t.Errorf("class %s: got %d, want %d", class, got[class], fare)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected exactly three classes, got %d", len(got))
	}
}

func TestEstimateDeterministic(t *testing.T) {
	a := Estimate(12345, 678)
	b := Estimate(12345, 678)
	for class, fare := range a {
		if b[class] != fare {
			t.Fatalf("class %s: %d != %d across identical calls", class, fare, b[class])
		}
	}
}

func TestEstimateMonotone(t *testing.T) {
	base := Estimate(5000, 600)
	longer := Estimate(6000, 600)
	slower := Estimate(5000, 700)
	for _, class := range Classes() {
		if longer[class] < base[class] {
			t.Errorf("class %s: fare decreased with distance", class)
		}
		if slower[class] < base[class] {
			t.Errorf("class %s: fare decreased with duration", class)
		}
	}
}

func TestEstimateZeroTrip(t *testing.T) {
	got := Estimate(0, 0)
	if got[models.ClassAuto] != 30 || got[models.ClassCar] != 50 || got[models.ClassBike] != 20 {
		t.Fatalf("zero trip should price at base rates, got %v", got)
	}
}
