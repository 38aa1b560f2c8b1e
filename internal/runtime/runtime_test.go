package runtime

import (
	"strings"
	"testing"
)

func TestArchiveTag(t *testing.T) {
	tag := archiveTag("/some/archive.tar")

	if !strings.HasPrefix(tag, "import/") {
		t.Fatalf("tag %q missing import/ prefix", tag)
	}
	if !strings.HasSuffix(tag, ":latest") {
		t.Fatalf("tag %q missing :latest suffix", tag)
	}

	if archiveTag("/some/archive.tar") != tag {
		t.Fatal("archiveTag is not deterministic")
	}

	if archiveTag("/other/archive.tar") == tag {
		t.Fatal("different paths produced the same tag")
	}
}
