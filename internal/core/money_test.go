package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{".50", 50, false},
		{"0.01", 1, false},
		{"0", 0, true},
		{"", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := Money{Cents: 10000}
	b := Money{Cents: 7000}

	if got := a.Sub(b); got.Cents != 3000 {
		t.Errorf("Sub() = %d, want 3000", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -3000 {
		t.Errorf("Sub() = %d, want -3000", got.Cents)
	}
	if got := a.Add(b); got.Cents != 17000 {
		t.Errorf("Add() = %d, want 17000", got.Cents)
	}
}
