package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gridplan/internal/domain/grid"
)

func TestChannelExchange(t *testing.T) {
	in := strings.NewReader("#domain\nhospital\n#end\ntrue;false\n")
	var out bytes.Buffer
	ch := NewChannel(in, &out)
	ctx := context.Background()

	if err := ch.Hello(ctx, "gridplan"); err != nil {
		t.Fatalf("Hello: %v", err)
	}
	level, err := ch.ReadLevel(ctx)
	if err != nil {
		t.Fatalf("ReadLevel: %v", err)
	}
	if level != "#domain\nhospital\n#end\n" {
		t.Fatalf("level=%q", level)
	}
	ack, err := ch.Send(ctx, grid.JointAction{grid.MoveAction(grid.East), grid.NoOpAction()})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(ack) != 2 || !ack[0] || ack[1] {
		t.Fatalf("ack=%v want=[true false]", ack)
	}
	if got, want := out.String(), "gridplan\nMove(E);NoOp\n"; got != want {
		t.Fatalf("written=%q want=%q", got, want)
	}
}

func TestReadLevelFailsOnTruncatedInput(t *testing.T) {
	ch := NewChannel(strings.NewReader("#domain\nhospital\n"), io.Discard)
	if _, err := ch.ReadLevel(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err=%v want=ErrUnexpectedEOF", err)
	}
}

func TestParseAck(t *testing.T) {
	ack, err := ParseAck("TRUE;true\r", 2)
	if err != nil || !ack[0] || !ack[1] {
		t.Fatalf("ack=%v err=%v", ack, err)
	}
	ack, err = ParseAck("true;yes", 2)
	if err != nil || !ack[0] || ack[1] {
		t.Fatalf("ack=%v err=%v want=[true false]", ack, err)
	}
	if _, err := ParseAck("true", 2); !errors.Is(err, ErrMalformedAck) {
		t.Fatalf("err=%v want=ErrMalformedAck", err)
	}
}

func TestSendHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := NewChannel(strings.NewReader("true\n"), io.Discard)
	if _, err := ch.Send(ctx, grid.JointAction{grid.NoOpAction()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want=context.Canceled", err)
	}
}
