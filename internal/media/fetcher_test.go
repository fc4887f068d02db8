package media

import "testing"

func TestParseGCSURIValid(t *testing.T) {
	bucket, object, ok := parseGCSURI("gs://my-bucket/products/p1.jpg")
	if !ok {
		t.Fatalf("expected ok")
	}
	if bucket != "my-bucket" || object != "products/p1.jpg" {
		t.Fatalf("got bucket=%q object=%q", bucket, object)
	}
}

func TestParseGCSURINonGCS(t *testing.T) {
	_, _, ok := parseGCSURI("https://example.com/p1.jpg")
	if ok {
		t.Fatalf("expected not ok for non-gs URI")
	}
}

func TestParseGCSURIMissingObject(t *testing.T) {
	_, _, ok := parseGCSURI("gs://my-bucket/")
	if ok {
		t.Fatalf("expected not ok when object path is empty")
	}
	_, _, ok = parseGCSURI("gs://my-bucket")
	if ok {
		t.Fatalf("expected not ok when no slash after bucket")
	}
}
