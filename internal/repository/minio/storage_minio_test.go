package minio

import "testing"

func TestObjectURL(t *testing.T) {
	got := ObjectURL("https://cdn.example.com/", "mountain-trips", "trips/abc/zdjęcie 1.jpg")
	want := "https://cdn.example.com/mountain-trips/trips/abc/zdj%C4%99cie%201.jpg"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNewStorageFallsBackToEndpoint(t *testing.T) {
	client, err := NewClient("localhost:9000", "key", "secret", false)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	storage := NewStorage(client, "")
	if storage.publicURL != "http://localhost:9000" {
		t.Fatalf("unexpected public url %s", storage.publicURL)
	}
	if NewStorage(client, "https://img.example.com/").publicURL != "https://img.example.com" {
		t.Fatalf("expected trimmed public url")
	}
}
