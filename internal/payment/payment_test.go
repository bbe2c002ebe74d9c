package payment

import "testing"

func TestAddStatePaymentReinjectionFails(t *testing.T) {
	ap := NewAggregatePayments(2)
	matrix := [][]float64{{1, 2}, {3, 4}}

	if err := ap.AddStatePayment(0, 5, matrix); err != nil {
		t.Fatalf("first injection: %v", err)
	}
	if err := ap.AddStatePayment(1, 5, matrix); err == nil {
		t.Fatal("expected a payment-reinjection error on reuse of type index 5")
	}
}

func TestAddStatePaymentDimensionMismatch(t *testing.T) {
	ap := NewAggregatePayments(3)
	matrix := [][]float64{{1, 2}}
	if err := ap.AddStatePayment(0, 0, matrix); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
}

func TestMaxPaymentIndexUsed(t *testing.T) {
	ap := NewAggregatePayments(1)
	matrix := [][]float64{{1, 2}}
	if ap.MaxPaymentIndexUsed() != -1 {
		t.Fatalf("MaxPaymentIndexUsed() = %d before any injection, want -1", ap.MaxPaymentIndexUsed())
	}
	_ = ap.AddStatePayment(0, 2, matrix)
	_ = ap.AddTransitionPayment(0, 1, 7, matrix)
	if ap.MaxPaymentIndexUsed() != 7 {
		t.Errorf("MaxPaymentIndexUsed() = %d, want 7", ap.MaxPaymentIndexUsed())
	}
}

func TestSplitPreservesPolicyAlignment(t *testing.T) {
	ap := NewAggregatePayments(4)
	matrix := make([][]float64, 4)
	for i := range matrix {
		matrix[i] = []float64{float64(i)}
	}
	if err := ap.AddStatePayment(0, 0, matrix); err != nil {
		t.Fatalf("AddStatePayment: %v", err)
	}

	groups := ap.Split(2)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	// policy 0 and 2 go to group 0 (round robin), in order.
	if got := groups[0].StatePayments(0)[0][0].Amounts[0]; got != 0 {
		t.Errorf("group0[0] amount = %v, want 0", got)
	}
	if got := groups[0].StatePayments(1)[0][0].Amounts[0]; got != 2 {
		t.Errorf("group0[1] amount = %v, want 2", got)
	}
}
