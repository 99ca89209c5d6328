package api_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"shelve/internal/api"
	"shelve/internal/config"
	"shelve/internal/movelog"
	"shelve/internal/restore"
	"shelve/internal/testsupport"
)

func newService(t *testing.T, opts ...testsupport.ConfigOption) *api.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	svc, err := api.New(cfg, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceScenarioOrganizeAndUndoLatest(t *testing.T) {
	for _, backend := range testsupport.Backends() {
		t.Run(backend, func(t *testing.T) {
			svc := newService(t, testsupport.WithBackend(backend))
			ctx := context.Background()
			dir := t.TempDir()
			testsupport.WriteFiles(t, dir, "a.jpg", "b.txt", "c.xyz")

			summary, err := svc.Organize(ctx, dir)
			if err != nil {
				t.Fatalf("Organize: %v", err)
			}
			if summary.Count != 3 || summary.ID == "" {
				t.Fatalf("unexpected summary %+v", summary)
			}
			want := []string{"Documents/b.txt", "Images/a.jpg", "Others/c.xyz"}
			if got := testsupport.Tree(t, dir); !reflect.DeepEqual(got, want) {
				t.Fatalf("unexpected tree %v", got)
			}

			report, err := svc.UndoLatest(ctx)
			if err != nil {
				t.Fatalf("UndoLatest: %v", err)
			}
			if report.Outcome != restore.OutcomeRestored || len(report.Restored) != 3 {
				t.Fatalf("unexpected report %+v", report)
			}
			list, err := svc.ListRecordSummaries(ctx)
			if err != nil || len(list) != 0 {
				t.Fatalf("expected empty history, got %+v, %v", list, err)
			}
		})
	}
}

func TestServiceUndoSpecificByHistoryNumber(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	first, second := t.TempDir(), t.TempDir()
	testsupport.WriteFiles(t, first, "one.doc")
	testsupport.WriteFiles(t, second, "two.wav")

	if _, err := svc.Organize(ctx, first); err != nil {
		t.Fatalf("Organize first: %v", err)
	}
	if _, err := svc.Organize(ctx, second); err != nil {
		t.Fatalf("Organize second: %v", err)
	}

	id, err := svc.ResolveRecordRef(ctx, "#2")
	if err != nil {
		t.Fatalf("ResolveRecordRef: %v", err)
	}
	report, err := svc.UndoSpecific(ctx, id)
	if err != nil {
		t.Fatalf("UndoSpecific: %v", err)
	}
	if report.Folder != first {
		t.Fatalf("expected first folder restored, got %q", report.Folder)
	}
	testsupport.AssertFile(t, filepath.Join(first, "one.doc"))
	testsupport.AssertFile(t, filepath.Join(second, "Audio", "two.wav"))
}

func TestServiceResolveRecordRef(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if id, err := svc.ResolveRecordRef(ctx, " 2026-01-01_00-00-00 "); err != nil || id != "2026-01-01_00-00-00" {
		t.Fatalf("expected id passthrough, got %q, %v", id, err)
	}
	for _, bad := range []string{"", "#0", "#x", "#-1"} {
		if _, err := svc.ResolveRecordRef(ctx, bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if _, err := svc.ResolveRecordRef(ctx, "#1"); !errors.Is(err, movelog.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on empty history, got %v", err)
	}
}

func TestServiceUndoSpecificUnknown(t *testing.T) {
	svc := newService(t)
	if _, err := svc.UndoSpecific(context.Background(), "2001-02-03_04-05-06"); !errors.Is(err, movelog.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestServiceUsesConfiguredCategories(t *testing.T) {
	svc := newService(t, testsupport.WithCategories(config.Category{Name: "Pics", Extensions: []string{"JPG"}}))
	if names := svc.Categories().Names(); !reflect.DeepEqual(names, []string{"Pics"}) {
		t.Fatalf("unexpected categories %v", names)
	}
	dir := t.TempDir()
	testsupport.WriteFiles(t, dir, "a.jpg", "b.png")
	plan, err := svc.PlanOrganize(dir)
	if err != nil {
		t.Fatalf("PlanOrganize: %v", err)
	}
	if len(plan) != 2 || plan[0].Category != "Pics" || plan[1].Category != "Others" {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestServicePreviewAndListFiles(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	dir := t.TempDir()
	testsupport.WriteFiles(t, dir, "x.gif", "y.deb")

	files, err := svc.ListFiles(dir)
	if err != nil || len(files) != 2 {
		t.Fatalf("ListFiles: %+v, %v", files, err)
	}
	summary, err := svc.Organize(ctx, dir)
	if err != nil {
		t.Fatalf("Organize: %v", err)
	}
	lines, err := svc.Preview(ctx, summary.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(lines) != 2 || lines[0].Category != "Images" || lines[1].Category != "Installers" {
		t.Fatalf("unexpected preview %+v", lines)
	}
	if remaining, _ := svc.ListFiles(dir); len(remaining) != 0 {
		t.Fatalf("expected no top-level files after organize, got %+v", remaining)
	}
}
