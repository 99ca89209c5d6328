package movelog

import (
	"errors"
	"io/fs"
	"testing"
)

func TestWrapMatchesMarkerAndCause(t *testing.T) {
	err := Wrap(ErrFilesystem, "organize", "/d", fs.ErrPermission)
	if !errors.Is(err, ErrFilesystem) {
		t.Fatal("expected ErrFilesystem match")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatal("expected cause match")
	}
	var typed *Error
	if !errors.As(err, &typed) || typed.Path != "/d" || typed.Op != "organize" {
		t.Fatalf("expected *Error with context, got %#v", err)
	}
	if got := err.Error(); got != "filesystem error: organize: /d: permission denied" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Wrap(nil, "op", "", nil), "filesystem"},
		{notFound("load", "x"), "record_not_found"},
		{Wrap(ErrRecordCorrupt, "load", "", errors.New("bad")), "record_corrupt"},
		{ErrNothingToUndo, "nothing_to_undo"},
		{errors.New("other"), "internal"},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
