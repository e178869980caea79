package protocol

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_TrimIdempotence(t *testing.T) {
	inputs := []string{
		"key:tap,a",
		"  key:tap,a  ",
		"\tmouse:move,1,2\n",
		"",
		"   ",
	}
	for _, in := range inputs {
		got1, ok1 := Parse(in)
		got2, ok2 := Parse(strings.TrimSpace(in))
		if ok1 != ok2 || !reflect.DeepEqual(got1, got2) {
			t.Errorf("Parse(%q) not idempotent under trim: (%v,%v) vs (%v,%v)", in, got1, ok1, got2, ok2)
		}
	}
}

func TestParse_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = ok, want rejected", in)
		}
	}
}

func TestParse_UnknownPrefix(t *testing.T) {
	for _, in := range []string{"bogus:1,2", "keyboard:down,a", ":nocolonprefix"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = ok, want rejected", in)
		}
	}
}

func TestParse_KeyDownUpTap(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		key  string
	}{
		{"key:down,space", KeyDown, "space"},
		{"key:up,a", KeyUp, "a"},
		{"key:tap,enter", KeyTap, "enter"},
	}
	for _, tt := range tests {
		cmd, ok := Parse(tt.in)
		if !ok {
			t.Fatalf("Parse(%q) rejected, want accepted", tt.in)
		}
		if cmd.Kind != tt.kind || cmd.Key != tt.key {
			t.Errorf("Parse(%q) = %+v, want Kind=%v Key=%q", tt.in, cmd, tt.kind, tt.key)
		}
	}
}

func TestParse_KeyDown_UnknownSub(t *testing.T) {
	if _, ok := Parse("key:press,a"); ok {
		t.Error("Parse(key:press,a) = ok, want rejected (unknown sub)")
	}
}

func TestParse_KeyType_PreservesEmbeddedCommas(t *testing.T) {
	cmd, ok := Parse("key:type,hello, world, 123")
	if !ok {
		t.Fatal("Parse rejected key:type line")
	}
	want := "hello, world, 123"
	if cmd.Kind != KeyType || cmd.Text != want {
		t.Errorf("Text = %q, want %q", cmd.Text, want)
	}
}

func TestParse_MouseMove(t *testing.T) {
	cmd, ok := Parse("mouse:move,100,-200")
	if !ok {
		t.Fatal("Parse rejected mouse:move")
	}
	if cmd.Kind != MouseMove || cmd.X != 100 || cmd.Y != -200 {
		t.Errorf("cmd = %+v, want MouseMove{100,-200}", cmd)
	}
}

func TestParse_MouseMove_ParseFailureRejects(t *testing.T) {
	for _, in := range []string{"mouse:move,abc,2", "mouse:move,1", "mouse:move,"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = ok, want rejected", in)
		}
	}
}

func TestParse_MouseButtonDefaultsToLeft(t *testing.T) {
	for _, in := range []string{"mouse:click", "mouse:down", "mouse:up"} {
		cmd, ok := Parse(in)
		if !ok {
			t.Fatalf("Parse(%q) rejected", in)
		}
		if cmd.Button != "left" {
			t.Errorf("Parse(%q).Button = %q, want left", in, cmd.Button)
		}
	}
}

func TestParse_MouseButtonExplicit(t *testing.T) {
	cmd, ok := Parse("mouse:click,right")
	if !ok || cmd.Button != "right" {
		t.Errorf("Parse(mouse:click,right) = %+v,%v, want Button=right", cmd, ok)
	}
}

func TestParse_MouseScroll_VerticalHorizontalOrderIsCallerResponsibility(t *testing.T) {
	cmd, ok := Parse("mouse:scroll,3,5")
	if !ok || cmd.Kind != MouseScroll || cmd.X != 3 || cmd.Y != 5 {
		t.Fatalf("Parse(mouse:scroll,3,5) = %+v,%v", cmd, ok)
	}
}

func TestParse_MidiNoteOn_ChannelDefaultsToZero(t *testing.T) {
	cmd, ok := Parse("midi:note_on,60,127")
	if !ok {
		t.Fatal("Parse rejected midi:note_on")
	}
	if cmd.Kind != MidiNoteOn || cmd.Note != 60 || cmd.Velocity != 127 || cmd.Channel != 0 {
		t.Errorf("cmd = %+v, want Note=60 Velocity=127 Channel=0", cmd)
	}
}

func TestParse_MidiNoteOn_ExplicitChannel(t *testing.T) {
	cmd, ok := Parse("midi:note_on,60,127,3")
	if !ok || cmd.Channel != 3 {
		t.Errorf("cmd = %+v,%v, want Channel=3", cmd, ok)
	}
}

func TestParse_MidiNoteOff_VelocityAndChannelDefault(t *testing.T) {
	cmd, ok := Parse("midi:note_off,60")
	if !ok {
		t.Fatal("Parse rejected midi:note_off")
	}
	if cmd.Note != 60 || cmd.Velocity != 0 || cmd.Channel != 0 {
		t.Errorf("cmd = %+v, want Velocity=0 Channel=0", cmd)
	}
}

func TestParse_MidiCc(t *testing.T) {
	cmd, ok := Parse("midi:cc,7,64")
	if !ok || cmd.Kind != MidiCc || cmd.Controller != 7 || cmd.Value != 64 || cmd.Channel != 0 {
		t.Errorf("cmd = %+v,%v", cmd, ok)
	}
}

func TestParse_MidiRaw(t *testing.T) {
	cmd, ok := Parse("midi:raw,144,60,127")
	if !ok || cmd.Kind != MidiRaw || cmd.RawBytes != [3]uint8{144, 60, 127} {
		t.Errorf("cmd = %+v,%v", cmd, ok)
	}
}

func TestParse_MidiOutOfRangeRejects(t *testing.T) {
	for _, in := range []string{"midi:note_on,300,127", "midi:cc,7,999", "midi:raw,1,2,999"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = ok, want rejected (out of uint8 range)", in)
		}
	}
}

func TestParse_WsRaw(t *testing.T) {
	cmd, ok := Parse("ws:raw,{\"any\":\"payload, with, commas\"}")
	if !ok || cmd.Kind != WsRaw {
		t.Fatalf("Parse rejected ws:raw")
	}
	want := `{"any":"payload, with, commas"}`
	if cmd.Payload != want {
		t.Errorf("Payload = %q, want %q", cmd.Payload, want)
	}
}

func TestParse_WsBroadcast_SplitsOnFirstCommaOnly(t *testing.T) {
	cmd, ok := Parse("ws:temperature,23.5,extra,stuff")
	if !ok || cmd.Kind != WsBroadcast {
		t.Fatalf("Parse rejected ws broadcast")
	}
	if cmd.ID != "temperature" || cmd.WsValue != "23.5,extra,stuff" {
		t.Errorf("cmd = %+v, want ID=temperature WsValue=23.5,extra,stuff", cmd)
	}
}

func TestParse_WsBroadcast_NoCommaRejects(t *testing.T) {
	if _, ok := Parse("ws:nocommahere"); ok {
		t.Error("Parse(ws:nocommahere) = ok, want rejected")
	}
}

func TestParse_OscNoArgs(t *testing.T) {
	cmd, ok := Parse("osc:/trigger")
	if !ok || cmd.Kind != OscMessage || cmd.Address != "/trigger" || len(cmd.Args) != 0 {
		t.Errorf("cmd = %+v,%v, want empty Args", cmd, ok)
	}
}

func TestParse_OscWithArgs(t *testing.T) {
	cmd, ok := Parse("osc:/color,255,128,0")
	if !ok {
		t.Fatal("Parse rejected osc message")
	}
	want := []string{"255", "128", "0"}
	if cmd.Address != "/color" || !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("cmd = %+v, want Address=/color Args=%v", cmd, want)
	}
}

func TestParse_OscNoLeadingSlashIsPermissive(t *testing.T) {
	// Addresses without a leading '/' are accepted, preserving observed
	// upstream behavior.
	cmd, ok := Parse("osc:color,1")
	if !ok || cmd.Address != "color" {
		t.Errorf("cmd = %+v,%v, want accepted with Address=color", cmd, ok)
	}
}
