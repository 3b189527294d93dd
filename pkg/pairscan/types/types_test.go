package types

import (
	"testing"
)

func TestDirectoryFileMapOrder(t *testing.T) {
	m := NewDirectoryFileMap()
	m.Add("/a", FileEntry{Path: "/a/one.zip", Category: CategoryArchive, BaseName: "one"})
	m.Add("/c", FileEntry{Path: "/c/two.jpg", Category: CategoryPreview, BaseName: "two"})
	m.Add("/a", FileEntry{Path: "/a/three.rar", Category: CategoryArchive, BaseName: "three"})
	m.AddDir("/b")

	dirs := m.Dirs()
	want := []string{"/a", "/c", "/b"}
	if len(dirs) != len(want) {
		t.Fatalf("Dirs() = %v, want %v", dirs, want)
	}
	for i, dir := range want {
		if dirs[i] != dir {
			t.Errorf("Dirs()[%d] = %q, want %q", i, dirs[i], dir)
		}
	}

	files := m.Files("/a")
	if len(files) != 2 {
		t.Fatalf("Files(/a) has %d entries, want 2", len(files))
	}
	if files[0].Path != "/a/one.zip" || files[1].Path != "/a/three.rar" {
		t.Errorf("Files(/a) order = %q, %q", files[0].Path, files[1].Path)
	}

	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if m.TotalFiles() != 3 {
		t.Errorf("TotalFiles() = %d, want 3", m.TotalFiles())
	}
}

func TestDirectoryFileMapAddDirIdempotent(t *testing.T) {
	m := NewDirectoryFileMap()
	m.AddDir("/x")
	m.AddDir("/x")
	m.Add("/x", FileEntry{Path: "/x/a.zip", Category: CategoryArchive, BaseName: "a"})

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if got := len(m.Files("/x")); got != 1 {
		t.Errorf("Files(/x) has %d entries, want 1", got)
	}
}

func TestFilePairImplementsPairable(t *testing.T) {
	var p Pairable = FilePair{
		ArchivePath: "/data/a.zip",
		PreviewPath: "/data/a.jpg",
		BaseName:    "a",
	}

	if p.Archive() != "/data/a.zip" {
		t.Errorf("Archive() = %q", p.Archive())
	}
	if p.Preview() != "/data/a.jpg" {
		t.Errorf("Preview() = %q", p.Preview())
	}
	if p.Base() != "a" {
		t.Errorf("Base() = %q", p.Base())
	}
}

func TestUnpairedSetEmpty(t *testing.T) {
	var u UnpairedSet
	if !u.Empty() {
		t.Error("zero UnpairedSet should be empty")
	}

	u.Archives = append(u.Archives, "/a.zip")
	if u.Empty() {
		t.Error("set with an archive should not be empty")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero", input: "0", want: 0},
		{name: "megabytes", input: "100M", want: 100 * MiB},
		{name: "megabytes with B", input: "100MB", want: 100 * MiB},
		{name: "gigabytes with iB", input: "2GiB", want: 2 * GiB},
		{name: "decimal truncated", input: "1.5G", want: 1610612736},
		{name: "whitespace", input: "  50M  ", want: 50 * MiB},
		{name: "empty string", input: "", wantErr: true},
		{name: "negative", input: "-1M", wantErr: true},
		{name: "bad suffix", input: "10X", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
