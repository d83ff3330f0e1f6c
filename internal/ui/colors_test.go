package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#00FF00", "#FF0000", "#FFA500", "#626262")

	t.Run("Steps numbers each line", func(t *testing.T) {
		out := p.Steps("Próximos passos", []string{"abrir", "colar", "executar"})
		for _, want := range []string{"Próximos passos", "1. abrir", "2. colar", "3. executar"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
	})

	t.Run("Status marks outcome", func(t *testing.T) {
		if out := p.Status(true, "ok", "200"); !strings.Contains(out, "✓ ok") || !strings.Contains(out, "(200)") {
			t.Errorf("unexpected success line %q", out)
		}
		if out := p.Status(false, "falhou", ""); !strings.Contains(out, "✗ falhou") {
			t.Errorf("unexpected failure line %q", out)
		}
	})
}
