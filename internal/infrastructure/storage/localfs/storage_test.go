package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUploadDownloadRemoveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	url, err := store.Upload(ctx, "patient-1/doc-1_report.pdf", "application/pdf", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "http://localhost:8080/files/patient-1/doc-1_report.pdf" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := store.Download(ctx, "patient-1/doc-1_report.pdf")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Remove(ctx, "patient-1/doc-1_report.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "patient-1", "doc-1_report.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
}

func TestRemoveMissingKeyIsNoError(t *testing.T) {
	store, err := New(t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Remove(context.Background(), "patient-1/gone.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store, err := New(t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := store.Download(context.Background(), "../outside.txt"); err == nil {
		t.Fatalf("expected error for escaping key")
	}
	if _, err := store.Upload(context.Background(), "/abs.txt", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for absolute key")
	}
}
