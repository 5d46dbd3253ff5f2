package interactive

import (
	"bytes"
	"strings"
	"testing"
)

func TestAcknowledge(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Response
	}{
		{name: "enter", input: "\n", want: ResponseAcknowledged},
		{name: "any text", input: "no thanks\n", want: ResponseAcknowledged},
		{name: "last line without newline", input: "ok", want: ResponseAcknowledged},
		{name: "eof", input: "", want: ResponseClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			p := NewPrompterWithIO(strings.NewReader(tt.input), output)

			if got := p.Acknowledge("Nebula 1.1.0 is available.", "Update Now"); got != tt.want {
				t.Errorf("Acknowledge() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(output.String(), "Nebula 1.1.0 is available.\n[Update Now] ") {
				t.Errorf("unexpected prompt output: %q", output.String())
			}
		})
	}
}

func TestAcknowledgeSequential(t *testing.T) {
	output := &bytes.Buffer{}
	p := NewPrompterWithIO(strings.NewReader("\n\n"), output)

	for i := 0; i < 2; i++ {
		if got := p.Acknowledge("", "OK"); got != ResponseAcknowledged {
			t.Fatalf("prompt %d: got %v", i, got)
		}
	}
	if got := p.Acknowledge("", "OK"); got != ResponseClosed {
		t.Errorf("third prompt = %v, want closed", got)
	}
	if strings.Count(output.String(), "[OK] ") != 3 {
		t.Errorf("expected three controls, got %q", output.String())
	}
}

func TestResponseString(t *testing.T) {
	if ResponseAcknowledged.String() != "acknowledged" || ResponseClosed.String() != "closed" {
		t.Error("unexpected Response strings")
	}
	if Response(9).String() != "unknown" {
		t.Error("expected unknown for out-of-range Response")
	}
}

func TestTerminalHelpersOnBuffers(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminalWriter(&buf) {
		t.Error("a buffer is not a terminal")
	}
	if got := TerminalWidth(&buf, 72); got != 72 {
		t.Errorf("TerminalWidth() = %d, want fallback 72", got)
	}
}
