package validate

import (
	"errors"
	"testing"

	"github.com/hackgods/carehub/internal/apperr"
)

func TestRequired(t *testing.T) {
	if err := Required("name", "Dr. A"); err != nil {
		t.Errorf("Required(non-empty) = %v, want nil", err)
	}
	for _, v := range []string{"", "   ", "\t\n"} {
		if err := Required("name", v); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Required(%q) = %v, want ErrValidation", v, err)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"prefers morning sessions", false},
		{"salt & pepper", false},
		{"heart rate < 60 at rest", false},
		{`she said "ok" and it's fine`, false},
		{"Tom &amp; Jerry", false},
		{"&lt;b&gt; means bold", false},
		{"fish &amp; chips <i>daily</i>", true},
		{"<b>bold</b>", true},
		{"<script>alert(1)</script>", true},
		{`<img src=x onerror=alert(1)>`, true},
	}

	for _, tt := range tests {
		err := PlainText("notes", tt.in)
		if tt.wantErr && !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("PlainText(%q) = %v, want ErrValidation", tt.in, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("PlainText(%q) = %v, want nil", tt.in, err)
		}
	}
}

func TestNonNegativeAndFirst(t *testing.T) {
	if err := NonNegative("cost", 0); err != nil {
		t.Errorf("NonNegative(0) = %v", err)
	}
	neg := NonNegative("cost", -1)
	if !errors.Is(neg, apperr.ErrValidation) {
		t.Fatalf("NonNegative(-1) = %v, want ErrValidation", neg)
	}
	if got := First(nil, neg, Required("x", "")); got != neg {
		t.Errorf("First() = %v, want %v", got, neg)
	}
	if got := First(nil, nil); got != nil {
		t.Errorf("First(nil, nil) = %v", got)
	}
}
