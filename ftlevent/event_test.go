package ftlevent_test

import (
	"testing"

	"github.com/Lynxx9/MNFTL/ftlevent"
)

func TestNewEventStartsUnaddressed(t *testing.T) {
	e := ftlevent.New(ftlevent.Write, 42, 1, 3.5)

	if e.Address().IsSet() {
		t.Fatalf("new event should start with no address")
	}
	if e.ReplaceAddress().IsSet() {
		t.Fatalf("new event should start with no replace address")
	}
	if e.TimeTaken() != 0 {
		t.Fatalf("new event should start with zero time taken")
	}
}

func TestIncrTimeTakenAccumulates(t *testing.T) {
	e := ftlevent.New(ftlevent.Read, 0, 1, 0)

	if got := e.IncrTimeTaken(1.5); got != 1.5 {
		t.Fatalf("IncrTimeTaken() = %v, want 1.5", got)
	}
	if got := e.IncrTimeTaken(2.5); got != 4.0 {
		t.Fatalf("IncrTimeTaken() = %v, want 4.0", got)
	}
}

func TestAddressLevels(t *testing.T) {
	page := ftlevent.PageAddress(7)
	if page.Level != ftlevent.LevelPage || page.Linear != 7 {
		t.Fatalf("PageAddress produced %+v", page)
	}

	block := ftlevent.BlockAddress(3)
	if block.Level != ftlevent.LevelBlock || block.Linear != 3 {
		t.Fatalf("BlockAddress produced %+v", block)
	}

	if ftlevent.NoAddress().IsSet() {
		t.Fatalf("NoAddress() should report unset")
	}
}

func TestTypeString(t *testing.T) {
	cases := map[ftlevent.Type]string{
		ftlevent.Read:  "READ",
		ftlevent.Write: "WRITE",
		ftlevent.Erase: "ERASE",
		ftlevent.Merge: "MERGE",
		ftlevent.Trim:  "TRIM",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
